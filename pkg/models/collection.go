package models

import (
	"fmt"
)

// Collection is a handle-keyed set of products preserving insertion
// order. The aggregator builds it front to back; the serializer and the
// mutation helpers iterate it in the same order. It is not safe for
// concurrent mutation.
type Collection struct {
	handles  []string
	products map[string]*Product
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{products: make(map[string]*Product)}
}

// Set inserts or replaces a product under its handle.
func (c *Collection) Set(p *Product) error {
	handle := p.Handle()
	if handle == "" {
		return fmt.Errorf("collection: product has no handle")
	}
	if _, ok := c.products[handle]; !ok {
		c.handles = append(c.handles, handle)
	}
	c.products[handle] = p
	return nil
}

// Get returns the product for a handle.
func (c *Collection) Get(handle string) (*Product, bool) {
	p, ok := c.products[handle]
	return p, ok
}

// Has reports whether a handle exists.
func (c *Collection) Has(handle string) bool {
	_, ok := c.products[handle]
	return ok
}

// Delete removes a product, reporting whether it existed.
func (c *Collection) Delete(handle string) bool {
	if _, ok := c.products[handle]; !ok {
		return false
	}
	delete(c.products, handle)
	for i, h := range c.handles {
		if h == handle {
			c.handles = append(c.handles[:i], c.handles[i+1:]...)
			break
		}
	}
	return true
}

// Handles returns the handles in insertion order.
func (c *Collection) Handles() []string {
	handles := make([]string, len(c.handles))
	copy(handles, c.handles)
	return handles
}

// Products returns the products in insertion order.
func (c *Collection) Products() []*Product {
	products := make([]*Product, 0, len(c.handles))
	for _, h := range c.handles {
		products = append(products, c.products[h])
	}
	return products
}

// Len returns the number of products.
func (c *Collection) Len() int {
	return len(c.handles)
}

// SetFieldAll writes the same cell value on every product row. The
// column is registered on rows that lacked it, so the change survives
// serialization for every product.
func (c *Collection) SetFieldAll(column, value string) {
	for _, p := range c.Products() {
		p.Fields.Set(column, value)
	}
}

// AddMetafieldColumn registers a new metafield column across the whole
// collection and rebinds the affected views. Product-scoped columns are
// added (empty) to every product row; variant-scoped columns to every
// variant row. This is the documented create-on-write path for
// metafields that SetMetafieldValue refuses to invent.
func (c *Collection) AddMetafieldColumn(header string) error {
	if _, _, _, ok := ParseMetafieldColumn(header); !ok {
		return fmt.Errorf("collection: %q is not a metafield column", header)
	}
	variantScoped := IsVariantMetafieldColumn(header)
	for _, p := range c.Products() {
		if variantScoped {
			for _, v := range p.Variants {
				if !v.Fields.Has(header) {
					v.Fields.Set(header, "")
				}
				v.RebindMetafields()
			}
			// The raw product row carries the column too, so the
			// serializer emits it in the header.
			if !p.Fields.Has(header) {
				p.Fields.Set(header, "")
			}
			continue
		}
		if !p.Fields.Has(header) {
			p.Fields.Set(header, "")
		}
		p.RebindMetafields()
	}
	return nil
}
