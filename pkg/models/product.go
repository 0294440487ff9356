package models

import (
	"fmt"
	"strings"
)

// Column names that anchor Shopify's grouped-row convention.
const (
	ColHandle              = "Handle"
	ColTitle               = "Title"
	ColVendor              = "Vendor"
	ColType                = "Type"
	ColTags                = "Tags"
	ColStatus              = "Status"
	ColCostPerItem         = "Cost per item"
	ColProductCategory     = "Product Category"
	ColImageSrc            = "Image Src"
	ColImagePosition       = "Image Position"
	ColImageAlt            = "Image Alt Text"
	ColVariantSKU          = "Variant SKU"
	ColVariantImage        = "Variant Image"
	ColVariantInventoryQty = "Variant Inventory Qty"
)

// VariantPrefix marks the variant-scoped column namespace.
const VariantPrefix = "Variant "

// A product declares at most three named option slots.
const MaxOptionSlots = 3

// Single-variant products carry the synthetic default option.
const (
	DefaultOptionName  = "Title"
	DefaultOptionValue = "Default Title"
)

// OptionNameColumn returns the "Option{n} Name" header for a slot.
func OptionNameColumn(slot int) string {
	return fmt.Sprintf("Option%d Name", slot)
}

// OptionValueColumn returns the "Option{n} Value" header for a slot.
func OptionValueColumn(slot int) string {
	return fmt.Sprintf("Option%d Value", slot)
}

// OptionLinkedToColumn returns the "Option{n} Linked To" header for a slot.
func OptionLinkedToColumn(slot int) string {
	return fmt.Sprintf("Option%d Linked To", slot)
}

// Image is one product image. Src is the identity key: a product never
// holds two images with the same src, no matter which rows introduced
// them. Position and Alt are kept as raw cell text.
type Image struct {
	Src      string `json:"src"`
	Position string `json:"position,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// Option is one axis of variation on a variant: the declared slot name,
// this variant's value, and an optional linked image.
type Option struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	LinkedTo string `json:"linked_to,omitempty"`
}

// Variant is a specific option combination of a product. Fields holds
// only the variant-scoped columns of the row that introduced it:
// "Variant *", "Cost per item", "Status" and the per-market price
// columns.
type Variant struct {
	Options    []Option              `json:"options"`
	Fields     *Row                  `json:"fields"`
	Metafields map[string]*Metafield `json:"-"`
}

// NewVariant creates a variant over its own row map and binds its
// metafield views.
func NewVariant(fields *Row) *Variant {
	return &Variant{
		Fields:     fields,
		Metafields: BindMetafields(fields),
	}
}

// SKU returns the variant's "Variant SKU" cell.
func (v *Variant) SKU() string {
	return v.Fields.Get(ColVariantSKU)
}

// Price returns the variant's "Variant Price" cell.
func (v *Variant) Price() string {
	return v.Fields.Get(VariantPrefix + "Price")
}

// CompareAtPrice returns the variant's "Variant Compare At Price" cell.
func (v *Variant) CompareAtPrice() string {
	return v.Fields.Get(VariantPrefix + "Compare At Price")
}

// IsDefault reports whether this is the synthetic single variant: no
// options, or any option valued "Default Title".
func (v *Variant) IsDefault() bool {
	if len(v.Options) == 0 {
		return true
	}
	for _, opt := range v.Options {
		if opt.Value == DefaultOptionValue {
			return true
		}
	}
	return false
}

// SetInventoryQty updates the variant's inventory quantity cell.
func (v *Variant) SetInventoryQty(qty int) {
	v.Fields.Set(ColVariantInventoryQty, fmt.Sprintf("%d", qty))
}

// SetImage assigns the variant image by source URL.
func (v *Variant) SetImage(src string) {
	v.Fields.Set(ColVariantImage, src)
}

// Metafield returns the variant's metafield view for "namespace.key".
func (v *Variant) Metafield(key string) (*Metafield, bool) {
	m, ok := v.Metafields[key]
	return m, ok
}

// SetMetafieldValue writes a raw value to an existing variant
// metafield. It never creates missing columns.
func (v *Variant) SetMetafieldValue(key, value string) error {
	m, ok := v.Metafields[key]
	if !ok {
		return fmt.Errorf("variant %s: no metafield %q", v.SKU(), key)
	}
	m.SetValue(value)
	return nil
}

// RebindMetafields recomputes the variant's metafield views, picking up
// columns added to its row map.
func (v *Variant) RebindMetafields() {
	v.Metafields = BindMetafields(v.Fields)
}

// Product is the hierarchical form of one Handle group. Fields holds
// every raw column of the group's first row, unknown columns included.
// Metafields is derived from Fields, never stored independently.
type Product struct {
	Fields     *Row                  `json:"fields"`
	Metafields map[string]*Metafield `json:"-"`
	Images     []Image               `json:"images"`
	Variants   []*Variant            `json:"variants"`
}

// NewProduct creates a product from its first-row column map and binds
// its metafield views.
func NewProduct(fields *Row) *Product {
	return &Product{
		Fields:     fields,
		Metafields: bindProductMetafields(fields),
	}
}

// Handle returns the product's grouping key.
func (p *Product) Handle() string {
	return p.Fields.Get(ColHandle)
}

// Title returns the product title.
func (p *Product) Title() string {
	return p.Fields.Get(ColTitle)
}

// Vendor returns the product vendor.
func (p *Product) Vendor() string {
	return p.Fields.Get(ColVendor)
}

// ProductType returns the product type.
func (p *Product) ProductType() string {
	return p.Fields.Get(ColType)
}

// Tags returns the product tags, split on "," and trimmed.
func (p *Product) Tags() []string {
	var tags []string
	for _, t := range strings.Split(p.Fields.Get(ColTags), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasTag reports whether the product carries the tag.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag unless already present.
func (p *Product) AddTag(tag string) {
	if p.HasTag(tag) {
		return
	}
	tags := append(p.Tags(), tag)
	p.Fields.Set(ColTags, strings.Join(tags, ", "))
}

// RemoveTag removes a tag, reporting whether it was present.
func (p *Product) RemoveTag(tag string) bool {
	tags := p.Tags()
	kept := tags[:0]
	for _, t := range tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tags) {
		return false
	}
	p.Fields.Set(ColTags, strings.Join(kept, ", "))
	return true
}

// IsCategorized reports whether the product has a category or type set.
func (p *Product) IsCategorized() bool {
	return p.Fields.Get(ColProductCategory) != "" || p.Fields.Get(ColType) != ""
}

// Metafield returns the product's metafield view for "namespace.key".
func (p *Product) Metafield(key string) (*Metafield, bool) {
	m, ok := p.Metafields[key]
	return m, ok
}

// SetMetafieldValue writes a raw value to an existing product
// metafield. It never creates missing columns; use
// Collection.AddMetafieldColumn for create-on-write semantics.
func (p *Product) SetMetafieldValue(key, value string) error {
	m, ok := p.Metafields[key]
	if !ok {
		return fmt.Errorf("product %s: no metafield %q", p.Handle(), key)
	}
	m.SetValue(value)
	return nil
}

// RebindMetafields recomputes the product's metafield views, picking up
// columns added to its row map.
func (p *Product) RebindMetafields() {
	p.Metafields = bindProductMetafields(p.Fields)
}

// HasImage reports whether the product already holds an image with the
// given src.
func (p *Product) HasImage(src string) bool {
	for _, img := range p.Images {
		if img.Src == src {
			return true
		}
	}
	return false
}

// AddImage appends an image, deduplicating by src. It reports whether
// the image was added.
func (p *Product) AddImage(img Image) bool {
	if img.Src == "" || p.HasImage(img.Src) {
		return false
	}
	p.Images = append(p.Images, img)
	return true
}

// VariantBySKU finds the variant with the given SKU.
func (p *Product) VariantBySKU(sku string) (*Variant, error) {
	for _, v := range p.Variants {
		if v.SKU() == sku {
			return v, nil
		}
	}
	return nil, fmt.Errorf("product %s: no variant with SKU %q", p.Handle(), sku)
}

// OptionNames returns the declared option slot names in slot order,
// skipping empty slots.
func (p *Product) OptionNames() []string {
	var names []string
	for slot := 1; slot <= MaxOptionSlots; slot++ {
		if name := p.Fields.Get(OptionNameColumn(slot)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// OptionSlot returns the declared slot index (1..3) of an option name,
// or 0 when the name is not declared.
func (p *Product) OptionSlot(name string) int {
	for slot := 1; slot <= MaxOptionSlots; slot++ {
		if p.Fields.Get(OptionNameColumn(slot)) == name {
			return slot
		}
	}
	return 0
}

// EnsureOptionSlot returns the slot of an option name, assigning the
// next free slot when the name is new. Slot assignments are stable for
// the life of the product; a fourth distinct name is a usage error.
func (p *Product) EnsureOptionSlot(name string) (int, error) {
	if slot := p.OptionSlot(name); slot != 0 {
		return slot, nil
	}
	for slot := 1; slot <= MaxOptionSlots; slot++ {
		col := OptionNameColumn(slot)
		if p.Fields.Get(col) == "" {
			p.Fields.Set(col, name)
			return slot, nil
		}
	}
	return 0, fmt.Errorf("product %s: cannot declare option %q: all %d option slots taken",
		p.Handle(), name, MaxOptionSlots)
}
