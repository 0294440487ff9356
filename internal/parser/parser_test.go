package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badno/shopcsv/internal/errs"
	"github.com/badno/shopcsv/internal/schema"
	"github.com/badno/shopcsv/pkg/models"
)

const shirtAndMugCSV = `Handle,Title,Vendor,Type,Tags,Option1 Name,Option1 Value,Variant SKU,Variant Price,Variant Image,Image Src,Image Position,Image Alt Text
blue-shirt,Blue Shirt,Acme,Shirt,"summer, cotton",Size,S,SKU-S,19.99,,https://cdn/1.jpg,1,front
blue-shirt,,,,,,M,SKU-M,21.99,https://cdn/2.jpg,https://cdn/2.jpg,2,
blue-shirt,,,,,,,,,,https://cdn/3.jpg,3,back
mug,Ceramic Mug,Acme,Mug,,,,SKU-MUG,9.99,,,,
`

func mustParse(t *testing.T, src string) *models.Collection {
	t.Helper()
	c, _, err := ParseString(src, Options{})
	require.NoError(t, err)
	return c
}

func TestParseGroupedRows(t *testing.T) {
	c := mustParse(t, shirtAndMugCSV)

	require.Equal(t, []string{"blue-shirt", "mug"}, c.Handles())

	shirt, ok := c.Get("blue-shirt")
	require.True(t, ok)

	t.Run("first row carries product fields", func(t *testing.T) {
		assert.Equal(t, "Blue Shirt", shirt.Title())
		assert.Equal(t, "Acme", shirt.Vendor())
		assert.Equal(t, []string{"summer", "cotton"}, shirt.Tags())
	})

	t.Run("each qualifying row becomes a variant", func(t *testing.T) {
		require.Len(t, shirt.Variants, 2)
		assert.Equal(t, "SKU-S", shirt.Variants[0].SKU())
		assert.Equal(t, "SKU-M", shirt.Variants[1].SKU())

		want := []models.Option{{Name: "Size", Value: "M"}}
		if diff := cmp.Diff(want, shirt.Variants[1].Options); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("variant rows hold only variant-scoped columns", func(t *testing.T) {
		v := shirt.Variants[1]
		assert.False(t, v.Fields.Has("Title"))
		assert.False(t, v.Fields.Has("Image Src"))
		assert.Equal(t, "21.99", v.Price())
		assert.Equal(t, "https://cdn/2.jpg", v.Fields.Get("Variant Image"))
	})

	t.Run("images collect across the whole group", func(t *testing.T) {
		want := []models.Image{
			{Src: "https://cdn/1.jpg", Position: "1", Alt: "front"},
			{Src: "https://cdn/2.jpg", Position: "2"},
			{Src: "https://cdn/3.jpg", Position: "3", Alt: "back"},
		}
		if diff := cmp.Diff(want, shirt.Images); diff != "" {
			t.Errorf("images mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("single-variant product gets the synthetic default option", func(t *testing.T) {
		mug, ok := c.Get("mug")
		require.True(t, ok)
		require.Len(t, mug.Variants, 1)

		v := mug.Variants[0]
		assert.True(t, v.IsDefault())
		want := []models.Option{{Name: "Title", Value: "Default Title"}}
		if diff := cmp.Diff(want, v.Options); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseHandleMerge(t *testing.T) {
	src := `Handle,Title,Option1 Name,Option1 Value,Variant SKU,Image Src
a,Product A,Size,S,SKU-1,
b,Product B,,,SKU-B,
a,,,M,SKU-2,https://cdn/late.jpg
`
	c := mustParse(t, src)
	assert.Equal(t, []string{"a", "b"}, c.Handles())

	a, _ := c.Get("a")
	require.Len(t, a.Variants, 2)
	assert.Equal(t, "SKU-2", a.Variants[1].SKU())
	require.Len(t, a.Images, 1)
	assert.Equal(t, "https://cdn/late.jpg", a.Images[0].Src)

	t.Run("first row stays authoritative", func(t *testing.T) {
		assert.Equal(t, "Product A", a.Title())
	})
}

func TestParseInertLeadingRows(t *testing.T) {
	src := `Handle,Title,Variant SKU,Image Src
,orphan,SKU-X,https://cdn/orphan.jpg
a,Product A,SKU-1,
`
	c := mustParse(t, src)
	assert.Equal(t, 1, c.Len())

	a, _ := c.Get("a")
	assert.Len(t, a.Variants, 1)
	assert.Empty(t, a.Images, "orphan row contributes nothing")
}

func TestParseImageDedup(t *testing.T) {
	src := `Handle,Title,Variant SKU,Image Src
a,Product A,SKU-1,https://cdn/same.jpg
a,,SKU-2,https://cdn/same.jpg
`
	c := mustParse(t, src)
	a, _ := c.Get("a")
	assert.Len(t, a.Images, 1)
}

func TestParseSKUFallback(t *testing.T) {
	// An image-only row carrying a stray SKU still counts as a variant
	// when the product declares no options. Matches the export
	// convention, where single-variant products omit option pairs.
	src := `Handle,Title,Variant SKU,Image Src
a,Product A,SKU-1,
a,,SKU-stray,https://cdn/x.jpg
`
	c := mustParse(t, src)
	a, _ := c.Get("a")
	assert.Len(t, a.Variants, 2)
}

func TestParseBOM(t *testing.T) {
	src := "\ufeffHandle,Title\na,Product A\n"
	c := mustParse(t, src)
	assert.True(t, c.Has("a"))
}

func TestParseShortRecords(t *testing.T) {
	src := "Handle,Title,Vendor\na,Product A\n"
	c := mustParse(t, src)

	a, _ := c.Get("a")
	v, ok := a.Fields.Lookup("Vendor")
	assert.True(t, ok, "missing cells still register their column")
	assert.Equal(t, "", v)
}

func TestParseErrors(t *testing.T) {
	t.Run("missing handle column", func(t *testing.T) {
		_, _, err := ParseString("Title,Vendor\nA,Acme\n", Options{})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindSchemaViolation))
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := ParseString("", Options{})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindMalformedInput))
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, _, err := ParseFile("does/not/exist.csv", Options{})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindInputAccess))
	})
}

func TestParseSchemaReport(t *testing.T) {
	opts := schema.DefaultOptions()
	_, report, err := ParseString(shirtAndMugCSV, Options{Schema: &opts})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 13, len(report.Columns))
	assert.Equal(t, 5, report.Counts[schema.BucketCore])
	assert.Equal(t, 3, report.Counts[schema.BucketVariant])

	t.Run("nil schema options skip the report", func(t *testing.T) {
		_, report, err := ParseString(shirtAndMugCSV, Options{})
		require.NoError(t, err)
		assert.Nil(t, report)
	})
}

func TestParseMetafieldColumns(t *testing.T) {
	src := strings.Join([]string{
		`Handle,Title,Variant SKU,"Metafield: custom.material[single_line_text_field]","Variant Metafield: specs.weight[number_decimal]"`,
		`a,Product A,SKU-1,cotton,1.5`,
		``,
	}, "\n")

	c := mustParse(t, src)
	a, _ := c.Get("a")

	m, ok := a.Metafield("custom.material")
	require.True(t, ok)
	assert.Equal(t, "cotton", m.Value())

	_, ok = a.Metafield("specs.weight")
	assert.False(t, ok, "variant-scoped column is not a product metafield")

	require.Len(t, a.Variants, 1)
	vm, ok := a.Variants[0].Metafield("specs.weight")
	require.True(t, ok)
	assert.Equal(t, "1.5", vm.Value())
}
