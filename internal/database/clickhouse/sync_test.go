package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badno/shopcsv/internal/parser"
	"github.com/badno/shopcsv/pkg/models"
)

const pricedCSV = `Handle,Title,Option1 Name,Option1 Value,Variant SKU,Variant Price,Variant Compare At Price,Price / Norway,Compare At Price / Norway,Included / Norway,Price / International
shirt,Shirt,Size,S,SKU-S,19.99,29.99,219.00,299.00,true,21.50
shirt,,,M,SKU-M,21.99,,239.00,,false,
free,Freebie,,,SKU-F,,,,,,
`

func parsePriced(t *testing.T) *models.Collection {
	t.Helper()
	c, _, err := parser.ParseString(pricedCSV, parser.Options{})
	require.NoError(t, err)
	return c
}

func TestExtractPrices(t *testing.T) {
	records := ExtractPrices(parsePriced(t))

	byKey := map[string]PriceRecord{}
	for _, r := range records {
		byKey[r.VariantSKU+"/"+r.Market] = r
	}

	t.Run("base prices land on the default market", func(t *testing.T) {
		r, ok := byKey["SKU-S/default"]
		require.True(t, ok)
		require.NotNil(t, r.Price)
		assert.Equal(t, 19.99, *r.Price)
		require.NotNil(t, r.CompareAtPrice)
		assert.Equal(t, 29.99, *r.CompareAtPrice)
		assert.True(t, r.Included)
		assert.Equal(t, "shirt", r.Handle)
	})

	t.Run("market columns group per market", func(t *testing.T) {
		r, ok := byKey["SKU-S/Norway"]
		require.True(t, ok)
		require.NotNil(t, r.Price)
		assert.Equal(t, 219.00, *r.Price)
		require.NotNil(t, r.CompareAtPrice)
		assert.Equal(t, 299.00, *r.CompareAtPrice)
		assert.True(t, r.Included)

		intl, ok := byKey["SKU-S/International"]
		require.True(t, ok)
		assert.Equal(t, 21.50, *intl.Price)
		assert.Nil(t, intl.CompareAtPrice)
	})

	t.Run("included false is carried", func(t *testing.T) {
		r, ok := byKey["SKU-M/Norway"]
		require.True(t, ok)
		assert.False(t, r.Included)
	})

	t.Run("blank market cells emit no record", func(t *testing.T) {
		_, ok := byKey["SKU-M/International"]
		assert.False(t, ok)
	})

	t.Run("unpriced variants emit nothing", func(t *testing.T) {
		for key := range byKey {
			assert.NotContains(t, key, "SKU-F")
		}
	})
}

func TestParsePrice(t *testing.T) {
	assert.Nil(t, parsePrice(""))
	assert.Nil(t, parsePrice("  "))
	assert.Nil(t, parsePrice("abc"))

	p := parsePrice(" 19.99 ")
	require.NotNil(t, p)
	assert.Equal(t, 19.99, *p)
}
