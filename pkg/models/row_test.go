package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowOrder(t *testing.T) {
	t.Run("keys keep insertion order", func(t *testing.T) {
		r := NewRow()
		r.Set("Handle", "blue-shirt")
		r.Set("Title", "Blue Shirt")
		r.Set("Vendor", "Acme")

		assert.Equal(t, []string{"Handle", "Title", "Vendor"}, r.Keys())
	})

	t.Run("overwrite does not move a key", func(t *testing.T) {
		r := NewRow()
		r.Set("Handle", "a")
		r.Set("Title", "b")
		r.Set("Handle", "c")

		assert.Equal(t, []string{"Handle", "Title"}, r.Keys())
		assert.Equal(t, "c", r.Get("Handle"))
	})

	t.Run("delete removes key and order slot", func(t *testing.T) {
		r := NewRow()
		r.Set("a", "1")
		r.Set("b", "2")
		r.Set("c", "3")
		r.Delete("b")

		assert.Equal(t, []string{"a", "c"}, r.Keys())
		assert.False(t, r.Has("b"))

		// re-adding registers at the end
		r.Set("b", "4")
		assert.Equal(t, []string{"a", "c", "b"}, r.Keys())
	})
}

func TestRowLookup(t *testing.T) {
	r := NewRow()
	r.Set("Title", "")

	v, ok := r.Lookup("Title")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = r.Lookup("Vendor")
	assert.False(t, ok)
	assert.Equal(t, "", r.Get("Vendor"))
}

func TestRowClone(t *testing.T) {
	r := NewRow()
	r.Set("Handle", "blue-shirt")
	r.Set("Title", "Blue Shirt")

	c := r.Clone()
	c.Set("Title", "Red Shirt")
	c.Set("Vendor", "Acme")

	assert.Equal(t, "Blue Shirt", r.Get("Title"))
	assert.False(t, r.Has("Vendor"))
	assert.Equal(t, []string{"Handle", "Title", "Vendor"}, c.Keys())
}

func TestRowJSON(t *testing.T) {
	t.Run("marshal keeps column order", func(t *testing.T) {
		r := NewRow()
		r.Set("Handle", "blue-shirt")
		r.Set("Title", "Blue \"XL\" Shirt")
		r.Set("Vendor", "")

		data, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Equal(t, `{"Handle":"blue-shirt","Title":"Blue \"XL\" Shirt","Vendor":""}`, string(data))
	})

	t.Run("round-trip preserves order", func(t *testing.T) {
		r := NewRow()
		r.Set("Vendor", "Acme")
		r.Set("Handle", "x")
		r.Set("Title", "y")

		data, err := json.Marshal(r)
		require.NoError(t, err)

		var back Row
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, r.Keys(), back.Keys())
		assert.Equal(t, "Acme", back.Get("Vendor"))
	})

	t.Run("unmarshal rejects non-object", func(t *testing.T) {
		var r Row
		assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
	})
}
