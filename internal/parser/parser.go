// Package parser turns Shopify's grouped-row CSV convention into the
// hierarchical product model. The first row of a Handle group carries
// every product-level column; later rows of the group contribute
// variants and images only.
package parser

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/badno/shopcsv/internal/errs"
	"github.com/badno/shopcsv/internal/schema"
	"github.com/badno/shopcsv/pkg/models"
)

// Options controls the diagnostic schema report produced alongside a
// parse. The detection flags never change which rows become products,
// variants or images.
type Options struct {
	// Schema enables the classifier side-channel; nil skips it.
	Schema *schema.Options
}

// ParseFile parses a Shopify export CSV from disk.
func ParseFile(path string, opts Options) (*models.Collection, *schema.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindInputAccess, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f, opts)
}

// ParseString parses a Shopify export CSV from raw text.
func ParseString(src string, opts Options) (*models.Collection, *schema.Report, error) {
	return Parse(strings.NewReader(src), opts)
}

// Parse tokenizes and aggregates a Shopify export CSV.
func Parse(r io.Reader, opts Options) (*models.Collection, *schema.Report, error) {
	header, rows, err := ReadRows(r)
	if err != nil {
		return nil, nil, err
	}

	var report *schema.Report
	if opts.Schema != nil {
		report = schema.Classify(header, *opts.Schema)
	}

	collection, err := Aggregate(header, rows)
	if err != nil {
		return nil, nil, err
	}
	return collection, report, nil
}

// ReadRows tokenizes CSV input into full-header ordered rows. Cells
// missing from short records read as "".
func ReadRows(r io.Reader) ([]string, []*models.Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true // Shopify exports are sometimes loosely quoted
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindMalformedInput, err, "read csv")
	}
	if len(records) == 0 {
		return nil, nil, errs.New(errs.KindMalformedInput, "empty input: header row required")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([]*models.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := models.NewRow()
		for i, col := range header {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row.Set(col, v)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Aggregate folds ordered flat rows into a collection, using the Handle
// column as the group boundary. Rows before the first non-empty handle
// are inert; a handle that repeats later in the file merges into the
// product it first created.
func Aggregate(header []string, rows []*models.Row) (*models.Collection, error) {
	if !hasColumn(header, models.ColHandle) {
		return nil, errs.New(errs.KindSchemaViolation,
			"required column %q missing from header", models.ColHandle)
	}

	collection := models.NewCollection()
	var current *models.Product

	for _, row := range rows {
		handle := row.Get(models.ColHandle)
		if handle != "" && (current == nil || handle != current.Handle()) {
			if existing, ok := collection.Get(handle); ok {
				current = existing
			} else {
				current = models.NewProduct(row.Clone())
				if err := collection.Set(current); err != nil {
					return nil, errs.Wrap(errs.KindSchemaViolation, err, "add product")
				}
			}
		}
		if current == nil {
			continue
		}
		addImage(current, row)
		addVariant(current, row)
	}
	return collection, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// addImage appends the row's image to the active product, deduplicating
// by src across the whole group.
func addImage(p *models.Product, row *models.Row) {
	src := row.Get(models.ColImageSrc)
	if src == "" {
		return
	}
	p.AddImage(models.Image{
		Src:      src,
		Position: row.Get(models.ColImagePosition),
		Alt:      row.Get(models.ColImageAlt),
	})
}

// isVariantRow applies the variant-detection rule: a non-empty value in
// the first declared option's value column, or a non-empty Variant SKU.
// The SKU fallback exists because some exports omit option pairs for
// single-variant products; it also promotes an image-only row carrying
// a stray SKU, which matches the upstream convention and is kept as-is.
func isVariantRow(p *models.Product, row *models.Row) bool {
	if names := p.OptionNames(); len(names) > 0 {
		slot := p.OptionSlot(names[0])
		if row.Get(models.OptionValueColumn(slot)) != "" {
			return true
		}
	}
	return row.Get(models.ColVariantSKU) != ""
}

// addVariant builds a variant from a qualifying row: the variant-scoped
// columns become its isolated row map, and the product's declared
// option names pair with this row's values in slot order.
func addVariant(p *models.Product, row *models.Row) {
	if !isVariantRow(p, row) {
		return
	}

	fields := models.NewRow()
	for _, key := range row.Keys() {
		if strings.HasPrefix(key, models.VariantPrefix) ||
			key == models.ColCostPerItem || key == models.ColStatus {
			fields.Set(key, row.Get(key))
			continue
		}
		// Market price cells ("Price / Norway") are per-variant data
		// even without the prefix; dropping them would lose the cells
		// of every row after the first.
		if _, _, ok := schema.ParseMarketColumn(key); ok {
			fields.Set(key, row.Get(key))
		}
	}

	v := models.NewVariant(fields)
	v.Options = variantOptions(p, row)
	p.Variants = append(p.Variants, v)
}

func variantOptions(p *models.Product, row *models.Row) []models.Option {
	var opts []models.Option
	for slot := 1; slot <= models.MaxOptionSlots; slot++ {
		name := p.Fields.Get(models.OptionNameColumn(slot))
		if name == "" {
			continue
		}
		opts = append(opts, models.Option{
			Name:     name,
			Value:    row.Get(models.OptionValueColumn(slot)),
			LinkedTo: row.Get(models.OptionLinkedToColumn(slot)),
		})
	}
	if len(opts) == 0 {
		opts = append(opts, models.Option{
			Name:  models.DefaultOptionName,
			Value: models.DefaultOptionValue,
		})
	}
	return opts
}
