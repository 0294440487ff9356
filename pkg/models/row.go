package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is an insertion-ordered map of column header to cell value.
// Shopify exports carry no fixed schema, so a row keeps every column it
// was given, recognized or not. Column order is load-bearing: the
// serializer rebuilds the output header from the first product's row.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// Set assigns a cell value, registering the column at the end of the
// key order on first use.
func (r *Row) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the cell value, or "" for an unknown column.
func (r *Row) Get(key string) string {
	return r.values[key]
}

// Lookup returns the cell value and whether the column exists.
func (r *Row) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the column exists on this row.
func (r *Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Delete removes a column and its value.
func (r *Row) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the column headers in insertion order.
func (r *Row) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy preserving column order.
func (r *Row) Clone() *Row {
	c := NewRow()
	for _, k := range r.keys {
		c.Set(k, r.values[k])
	}
	return c
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the
// document.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected JSON object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]string)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row: expected string key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("row: expected string value for %q, got %v", key, valTok)
		}
		r.Set(key, val)
	}

	_, err = dec.Token() // closing brace
	return err
}
