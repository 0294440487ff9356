package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBuckets(t *testing.T) {
	tests := []struct {
		header string
		bucket Bucket
	}{
		{"Handle", BucketCore},
		{"Body (HTML)", BucketCore},
		{"Published", BucketCore},
		{"Image Src", BucketStandard},
		{"SEO Title", BucketStandard},
		{"Option1 Name", BucketStandard},
		{"Option3 Linked To", BucketStandard},
		{"Variant SKU", BucketVariant},
		{"Variant Inventory Qty", BucketVariant},
		{"Google Shopping / Google Product Category", BucketGoogleShopping},
		{"Price / Norway", BucketMarketPricing},
		{"Compare At Price / International", BucketMarketPricing},
		{"Included / Norway", BucketMarketPricing},
		{"Metafield: custom.material[single_line_text_field]", BucketMetafield},
		{"Material (product.metafields.custom.material)", BucketMetafield},
		{"Totally Custom Column", BucketCustom},
		{"Option4 Name", BucketCustom},
	}

	opts := DefaultOptions()
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.bucket, classifyHeader(tt.header, opts))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	opts := DefaultOptions()

	t.Run("metafield beats variant prefix", func(t *testing.T) {
		b := classifyHeader("Variant Metafield: specs.weight[number_decimal]", opts)
		assert.Equal(t, BucketMetafield, b)
	})

	t.Run("market pricing loses to variant prefix", func(t *testing.T) {
		// "Variant Price / X" carries the variant prefix, which is
		// checked first
		b := classifyHeader("Variant Price / Norway", opts)
		assert.Equal(t, BucketVariant, b)
	})
}

func TestClassifyToggles(t *testing.T) {
	t.Run("disabled detections fall through to custom", func(t *testing.T) {
		opts := Options{}
		assert.Equal(t, BucketCustom, classifyHeader("Variant SKU", opts))
		assert.Equal(t, BucketCustom, classifyHeader("Price / Norway", opts))
		assert.Equal(t, BucketCustom, classifyHeader("Google Shopping / Condition", opts))
	})

	t.Run("custom patterns tag explicitly", func(t *testing.T) {
		opts := DefaultOptions()
		opts.CustomPatterns = []*regexp.Regexp{regexp.MustCompile(`^ERP `)}
		assert.Equal(t, BucketCustom, classifyHeader("ERP Sync Key", opts))
	})
}

func TestClassifyReport(t *testing.T) {
	headers := []string{"Handle", "Title", "Variant SKU", "Price / Norway", "Mystery"}
	report := Classify(headers, DefaultOptions())

	require.Len(t, report.Columns, 5)
	assert.Equal(t, "Handle", report.Columns[0].Name)
	assert.Equal(t, BucketCore, report.Columns[0].Bucket)

	assert.Equal(t, 2, report.Counts[BucketCore])
	assert.Equal(t, 1, report.Counts[BucketVariant])
	assert.Equal(t, 1, report.Counts[BucketMarketPricing])
	assert.Equal(t, 1, report.Counts[BucketCustom])
}

func TestParseMarketColumn(t *testing.T) {
	field, market, ok := ParseMarketColumn("Price / Norway")
	require.True(t, ok)
	assert.Equal(t, "Price", field)
	assert.Equal(t, "Norway", market)

	field, market, ok = ParseMarketColumn("Compare At Price / United States")
	require.True(t, ok)
	assert.Equal(t, "Compare At Price", field)
	assert.Equal(t, "United States", market)

	_, _, ok = ParseMarketColumn("Variant Price")
	assert.False(t, ok)
}
