package models

import (
	"regexp"
	"strings"
)

// Shopify encodes metafields as specially-formatted column headers. Two
// syntaxes occur in the wild:
//
//	Metafield: custom.material[list.single_line_text_field]
//	Material (product.metafields.custom.material)
//
// Variant-scoped metafields use the first syntax under the "Variant "
// prefix. Headers that merely resemble either syntax stay plain custom
// columns.
var (
	typedMetafieldRe  = regexp.MustCompile(`^(?:Variant )?Metafield:\s*([^.\[\]]+)\.([^\[\]]+)\[([^\[\]]+)\]$`)
	legacyMetafieldRe = regexp.MustCompile(`^.+ \((?:product\.)?metafields\.([^.()\s]+)\.([^()\s]+)\)$`)
)

// ListTypePrefix marks a metafield type as list-valued.
const ListTypePrefix = "list."

// Metafield is a live read/write view over one metafield column of its
// owning row. It stores no value of its own: reads reflect the row's
// current cell and writes mutate the row in place, so a later
// serialization sees every update.
type Metafield struct {
	Namespace string
	Key       string
	IsList    bool
	Column    string

	row *Row
}

// ParseMetafieldColumn reports whether header encodes a metafield and,
// if so, its namespace, key and list-ness. The legacy label syntax has
// no type tag and is never list-valued.
func ParseMetafieldColumn(header string) (namespace, key string, isList, ok bool) {
	if m := typedMetafieldRe.FindStringSubmatch(header); m != nil {
		return m[1], m[2], strings.HasPrefix(m[3], ListTypePrefix), true
	}
	if m := legacyMetafieldRe.FindStringSubmatch(header); m != nil {
		return m[1], m[2], false, true
	}
	return "", "", false, false
}

// IsVariantMetafieldColumn reports whether header is a variant-scoped
// metafield column.
func IsVariantMetafieldColumn(header string) bool {
	return strings.HasPrefix(header, VariantPrefix) && typedMetafieldRe.MatchString(header)
}

// BindMetafields builds the metafield views for every matching column
// of row, keyed by "namespace.key" and discovered in column order. Each
// column is an independent view: two columns encoding the same
// namespace and key in different syntaxes are never merged, the later
// one wins the map slot.
func BindMetafields(row *Row) map[string]*Metafield {
	views := make(map[string]*Metafield)
	for _, col := range row.Keys() {
		if m, ok := BindMetafieldColumn(row, col); ok {
			views[m.FullKey()] = m
		}
	}
	return views
}

// bindProductMetafields binds the product-level views of row, skipping
// variant-scoped columns which belong to the variant row maps.
func bindProductMetafields(row *Row) map[string]*Metafield {
	views := make(map[string]*Metafield)
	for _, col := range row.Keys() {
		if IsVariantMetafieldColumn(col) {
			continue
		}
		if m, ok := BindMetafieldColumn(row, col); ok {
			views[m.FullKey()] = m
		}
	}
	return views
}

// BindMetafieldColumn builds the view for a single column of row, if
// the column encodes a metafield.
func BindMetafieldColumn(row *Row, column string) (*Metafield, bool) {
	ns, key, isList, ok := ParseMetafieldColumn(column)
	if !ok {
		return nil, false
	}
	return &Metafield{
		Namespace: ns,
		Key:       key,
		IsList:    isList,
		Column:    column,
		row:       row,
	}, true
}

// FullKey returns the "namespace.key" map key for this view.
func (m *Metafield) FullKey() string {
	return m.Namespace + "." + m.Key
}

// Value returns the raw cell value of the owning row.
func (m *Metafield) Value() string {
	return m.row.Get(m.Column)
}

// SetValue writes the raw cell value through to the owning row.
func (m *Metafield) SetValue(v string) {
	m.row.Set(m.Column, v)
}

// Values returns the parsed value. List metafields split on ",", trim
// each entry and drop empties without deduplicating. Non-list
// metafields yield the raw value as a single entry, or nothing when the
// cell is empty.
func (m *Metafield) Values() []string {
	raw := m.Value()
	if !m.IsList {
		if raw == "" {
			return nil
		}
		return []string{raw}
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SetValues joins the entries with "," (no injected spaces) and writes
// the result through to the owning row.
func (m *Metafield) SetValues(vs []string) {
	m.row.Set(m.Column, strings.Join(vs, ","))
}
