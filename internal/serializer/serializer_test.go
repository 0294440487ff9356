package serializer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badno/shopcsv/internal/parser"
	"github.com/badno/shopcsv/pkg/models"
)

const exportCSV = `Handle,Title,Vendor,Type,Tags,Option1 Name,Option1 Value,Variant SKU,Variant Price,Variant Image,Image Src,Image Position,Image Alt Text
blue-shirt,Blue Shirt,Acme,Shirt,"summer, cotton",Size,S,SKU-S,19.99,,https://cdn/1.jpg,1,front
blue-shirt,,,,,,M,SKU-M,21.99,https://cdn/2.jpg,https://cdn/2.jpg,2,
blue-shirt,,,,,,,,,,https://cdn/3.jpg,3,back
mug,Ceramic Mug,Acme,Mug,,,,SKU-MUG,9.99,,https://cdn/mug.jpg,1,
`

func parseCSV(t *testing.T, src string) *models.Collection {
	t.Helper()
	c, _, err := parser.ParseString(src, parser.Options{})
	require.NoError(t, err)
	return c
}

func records(t *testing.T, text string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	require.NoError(t, err)
	return recs
}

func cell(header []string, rec []string, col string) string {
	for i, h := range header {
		if h == col && i < len(rec) {
			return rec[i]
		}
	}
	return ""
}

func TestRowsEmptyCollection(t *testing.T) {
	header, rows := Rows(models.NewCollection())
	assert.Nil(t, header)
	assert.Nil(t, rows)

	text, err := Serialize(models.NewCollection())
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestSerializeLayout(t *testing.T) {
	c := parseCSV(t, exportCSV)
	text, err := Serialize(c)
	require.NoError(t, err)

	recs := records(t, text)
	header := recs[0]
	body := recs[1:]

	t.Run("header is the first product's column order", func(t *testing.T) {
		assert.Equal(t, strings.Split(
			"Handle,Title,Vendor,Type,Tags,Option1 Name,Option1 Value,Variant SKU,Variant Price,Variant Image,Image Src,Image Position,Image Alt Text",
			","), header)
	})

	t.Run("first variant rides the full product row", func(t *testing.T) {
		assert.Equal(t, "blue-shirt", cell(header, body[0], "Handle"))
		assert.Equal(t, "Blue Shirt", cell(header, body[0], "Title"))
		assert.Equal(t, "SKU-S", cell(header, body[0], "Variant SKU"))
	})

	t.Run("later variant rows repeat handle and option names only", func(t *testing.T) {
		assert.Equal(t, "blue-shirt", cell(header, body[1], "Handle"))
		assert.Equal(t, "", cell(header, body[1], "Title"))
		assert.Equal(t, "Size", cell(header, body[1], "Option1 Name"))
		assert.Equal(t, "M", cell(header, body[1], "Option1 Value"))
		assert.Equal(t, "SKU-M", cell(header, body[1], "Variant SKU"))
	})

	t.Run("every image appears exactly once", func(t *testing.T) {
		seen := map[string]int{}
		for _, rec := range body {
			if src := cell(header, rec, "Image Src"); src != "" {
				seen[src]++
			}
		}
		for _, img := range []string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg", "https://cdn/mug.jpg"} {
			assert.Equal(t, 1, seen[img], img)
		}
	})

	t.Run("unconsumed images get trailing rows", func(t *testing.T) {
		// blue-shirt: 2 variant rows consume images 1 and 2, image 3
		// trails; mug: 1 variant row consumes its only image
		require.Len(t, body, 4)
		trailing := body[2]
		assert.Equal(t, "blue-shirt", cell(header, trailing, "Handle"))
		assert.Equal(t, "", cell(header, trailing, "Variant SKU"))
		assert.Equal(t, "https://cdn/3.jpg", cell(header, trailing, "Image Src"))
		assert.Equal(t, "back", cell(header, trailing, "Image Alt Text"))
	})
}

func TestSerializeProductWithoutVariants(t *testing.T) {
	fields := models.NewRow()
	fields.Set(models.ColHandle, "poster")
	fields.Set(models.ColTitle, "Poster")
	fields.Set(models.ColImageSrc, "")
	fields.Set(models.ColImagePosition, "")
	p := models.NewProduct(fields)
	p.AddImage(models.Image{Src: "https://cdn/p1.jpg", Position: "1"})
	p.AddImage(models.Image{Src: "https://cdn/p2.jpg", Position: "2"})

	c := models.NewCollection()
	require.NoError(t, c.Set(p))

	text, err := Serialize(c)
	require.NoError(t, err)
	recs := records(t, text)
	header := recs[0]
	body := recs[1:]

	require.Len(t, body, 2, "product row plus one trailing image row")
	assert.Equal(t, "https://cdn/p1.jpg", cell(header, body[0], "Image Src"))
	assert.Equal(t, "Poster", cell(header, body[0], "Title"))
	assert.Equal(t, "https://cdn/p2.jpg", cell(header, body[1], "Image Src"))
	assert.Equal(t, "", cell(header, body[1], "Title"))
}

func TestSerializeRoundTrip(t *testing.T) {
	// Serialization normalizes row layout, so one pass through
	// parse+serialize reaches a fixed point.
	c1 := parseCSV(t, exportCSV)
	text1, err := Serialize(c1)
	require.NoError(t, err)

	c2 := parseCSV(t, text1)
	text2, err := Serialize(c2)
	require.NoError(t, err)

	assert.Equal(t, text1, text2)

	t.Run("model equivalence", func(t *testing.T) {
		require.Equal(t, c1.Handles(), c2.Handles())
		for _, handle := range c1.Handles() {
			p1, _ := c1.Get(handle)
			p2, _ := c2.Get(handle)
			assert.Equal(t, p1.Title(), p2.Title(), handle)
			assert.Equal(t, len(p1.Variants), len(p2.Variants), handle)
			assert.Equal(t, p1.Images, p2.Images, handle)
		}
	})
}

func TestSerializeAfterMutation(t *testing.T) {
	c := parseCSV(t, exportCSV)

	shirt, _ := c.Get("blue-shirt")
	shirt.AddTag("sale")
	v, err := shirt.VariantBySKU("SKU-M")
	require.NoError(t, err)
	v.SetInventoryQty(3)

	text, err := Serialize(c)
	require.NoError(t, err)

	back := parseCSV(t, text)
	shirt2, _ := back.Get("blue-shirt")
	assert.True(t, shirt2.HasTag("sale"))

	// Variant Inventory Qty was not in the original header, so the
	// write cannot survive a round trip; width never grows past the
	// serialized header.
	recs := records(t, text)
	assert.NotContains(t, recs[0], models.ColVariantInventoryQty)
}

func TestWriteFile(t *testing.T) {
	c := parseCSV(t, exportCSV)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, WriteFile(path, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text, err := Serialize(c)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}
