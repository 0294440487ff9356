// Package serializer reconstructs Shopify's grouped-row CSV convention
// from the hierarchical product model. Re-parsing its output yields the
// same collection, though the physical row layout may differ from the
// original file within what the convention allows.
package serializer

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/badno/shopcsv/internal/errs"
	"github.com/badno/shopcsv/pkg/models"
)

// Rows lays out the collection as ordered flat rows. The header is the
// column order of the first product's raw row; columns a later product
// never saw serialize as empty cells. Every image of every product
// appears exactly once: on a product/variant row or on a trailing
// image-only row.
func Rows(c *models.Collection) ([]string, []*models.Row) {
	products := c.Products()
	if len(products) == 0 {
		return nil, nil
	}

	header := products[0].Fields.Keys()
	headerSet := make(map[string]struct{}, len(header))
	for _, h := range header {
		headerSet[h] = struct{}{}
	}

	var rows []*models.Row
	for _, p := range products {
		rows = append(rows, productRows(p, header, headerSet)...)
	}
	return header, rows
}

// Serialize renders the collection as CSV text. An empty collection has
// no first product to derive a header from and serializes to "".
func Serialize(c *models.Collection) (string, error) {
	header, rows := Rows(c)
	if header == nil {
		return "", nil
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return "", errs.Wrap(errs.KindSerialization, err, "write header")
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = row.Get(col)
		}
		if err := w.Write(record); err != nil {
			return "", errs.Wrap(errs.KindSerialization, err, "write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errs.Wrap(errs.KindSerialization, err, "flush")
	}
	return sb.String(), nil
}

// WriteFile serializes the collection and writes it to path.
func WriteFile(path string, c *models.Collection) error {
	text, err := Serialize(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errs.Wrap(errs.KindOutputAccess, err, "write %s", path)
	}
	return nil
}

// productRows emits one Handle group: the variant (or single product)
// rows first, then one trailing row per image no earlier row consumed.
func productRows(p *models.Product, header []string, headerSet map[string]struct{}) []*models.Row {
	consumed := make(map[string]bool)
	var out []*models.Row

	if len(p.Variants) == 0 {
		row := project(p.Fields, header)
		if len(p.Images) > 0 {
			img := p.Images[0]
			setIfKnown(row, headerSet, models.ColImageSrc, img.Src)
			setIfKnown(row, headerSet, models.ColImagePosition, img.Position)
			setIfKnown(row, headerSet, models.ColImageAlt, img.Alt)
			consumed[img.Src] = true
		}
		out = append(out, row)
	} else {
		for i, v := range p.Variants {
			row := variantRow(p, v, i == 0, header, headerSet)
			if src := v.Fields.Get(models.ColVariantImage); src != "" && !consumed[src] {
				consumed[src] = true
				// Keep the image record on the consuming row, so a
				// re-parse recovers it with position and alt intact.
				if row.Get(models.ColImageSrc) == "" {
					if img, ok := findImage(p, src); ok {
						setIfKnown(row, headerSet, models.ColImageSrc, img.Src)
						setIfKnown(row, headerSet, models.ColImagePosition, img.Position)
						setIfKnown(row, headerSet, models.ColImageAlt, img.Alt)
					}
				}
			}
			if i == 0 {
				if src := row.Get(models.ColImageSrc); src != "" {
					consumed[src] = true
				}
			}
			out = append(out, row)
		}
	}

	for _, img := range p.Images {
		if consumed[img.Src] {
			continue
		}
		row := template(header)
		row.Set(models.ColHandle, p.Handle())
		setIfKnown(row, headerSet, models.ColImageSrc, img.Src)
		setIfKnown(row, headerSet, models.ColImagePosition, img.Position)
		setIfKnown(row, headerSet, models.ColImageAlt, img.Alt)
		out = append(out, row)
		consumed[img.Src] = true
	}
	return out
}

// variantRow builds one variant's flat row. The first variant rides the
// full product row; later variants get an empty template with the
// Handle and the shared Option{n} Name cells repeated, so the group
// re-aggregates identically.
func variantRow(p *models.Product, v *models.Variant, first bool, header []string, headerSet map[string]struct{}) *models.Row {
	var row *models.Row
	if first {
		row = project(p.Fields, header)
	} else {
		row = template(header)
		row.Set(models.ColHandle, p.Handle())
		for slot := 1; slot <= models.MaxOptionSlots; slot++ {
			col := models.OptionNameColumn(slot)
			if name := p.Fields.Get(col); name != "" {
				setIfKnown(row, headerSet, col, name)
			}
		}
	}

	for _, key := range v.Fields.Keys() {
		setIfKnown(row, headerSet, key, v.Fields.Get(key))
	}

	for _, opt := range v.Options {
		slot := p.OptionSlot(opt.Name)
		if slot == 0 {
			continue // synthetic default option has no declared slot
		}
		setIfKnown(row, headerSet, models.OptionValueColumn(slot), opt.Value)
		if opt.LinkedTo != "" {
			setIfKnown(row, headerSet, models.OptionLinkedToColumn(slot), opt.LinkedTo)
		}
	}
	return row
}

func findImage(p *models.Product, src string) (models.Image, bool) {
	for _, img := range p.Images {
		if img.Src == src {
			return img, true
		}
	}
	return models.Image{}, false
}

// project copies fields onto a full-width row in header order.
func project(fields *models.Row, header []string) *models.Row {
	row := models.NewRow()
	for _, col := range header {
		row.Set(col, fields.Get(col))
	}
	return row
}

// template builds an all-empty full-width row.
func template(header []string) *models.Row {
	row := models.NewRow()
	for _, col := range header {
		row.Set(col, "")
	}
	return row
}

// setIfKnown writes a cell only for columns present in the header, so
// rows never grow past the serialized width.
func setIfKnown(row *models.Row, headerSet map[string]struct{}, col, value string) {
	if _, ok := headerSet[col]; ok {
		row.Set(col, value)
	}
}
