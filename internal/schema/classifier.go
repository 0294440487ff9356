// Package schema buckets export column headers into known categories.
// Classification is diagnostic only: it reports on a header set and
// never gates which rows or columns the parser accepts.
package schema

import (
	"regexp"
	"strings"

	"github.com/badno/shopcsv/pkg/models"
)

// Bucket is one classification category.
type Bucket string

const (
	BucketCore           Bucket = "core"
	BucketStandard       Bucket = "standard"
	BucketVariant        Bucket = "variant"
	BucketGoogleShopping Bucket = "google-shopping"
	BucketMarketPricing  Bucket = "market-pricing"
	BucketMetafield      Bucket = "metafield"
	BucketCustom         Bucket = "custom"
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{
	BucketCore,
	BucketStandard,
	BucketVariant,
	BucketGoogleShopping,
	BucketMarketPricing,
	BucketMetafield,
	BucketCustom,
}

// Options toggles the optional detections. Disabling a detection sends
// its headers further down the rule chain, usually into custom.
type Options struct {
	DetectMarketPricing  bool
	DetectGoogleShopping bool
	DetectVariantFields  bool
	CustomPatterns       []*regexp.Regexp
}

// DefaultOptions enables every detection.
func DefaultOptions() Options {
	return Options{
		DetectMarketPricing:  true,
		DetectGoogleShopping: true,
		DetectVariantFields:  true,
	}
}

// The seven required product-level fields of a Shopify export.
var coreFields = map[string]struct{}{
	"Handle":      {},
	"Title":       {},
	"Body (HTML)": {},
	"Vendor":      {},
	"Type":        {},
	"Tags":        {},
	"Published":   {},
}

// Known optional product-level fields.
var standardFields = map[string]struct{}{
	"Image Src":        {},
	"Image Position":   {},
	"Image Alt Text":   {},
	"Gift Card":        {},
	"SEO Title":        {},
	"SEO Description":  {},
	"Product Category": {},
	"Status":           {},
	"Cost per item":    {},
	"Published Scope":  {},
	"Collection":       {},
}

var (
	optionSlotRe    = regexp.MustCompile(`^Option[123] (Name|Value|Linked To)$`)
	marketPricingRe = regexp.MustCompile(`^(Price|Compare At Price|Included) / (.+)$`)
)

// ParseMarketColumn splits a market-pricing header into its field name
// and market.
func ParseMarketColumn(header string) (field, market string, ok bool) {
	m := marketPricingRe.FindStringSubmatch(header)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

const googleShoppingPrefix = "Google Shopping / "

// Column is one classified header.
type Column struct {
	Name   string
	Bucket Bucket
}

// Report is the classification of a header set: every header in source
// order plus per-bucket counts. Unrecognized headers land in custom,
// never dropped.
type Report struct {
	Columns []Column
	Counts  map[Bucket]int
}

// Classify buckets each header using ordered pattern rules. It is a
// pure function and never fails.
func Classify(headers []string, opts Options) *Report {
	report := &Report{
		Columns: make([]Column, 0, len(headers)),
		Counts:  make(map[Bucket]int),
	}
	for _, h := range headers {
		b := classifyHeader(h, opts)
		report.Columns = append(report.Columns, Column{Name: h, Bucket: b})
		report.Counts[b]++
	}
	return report
}

// classifyHeader applies the rules in priority order. The order
// matters: a metafield header that happens to start with "Variant "
// must stay a metafield, and custom is only ever the last resort.
func classifyHeader(header string, opts Options) Bucket {
	if _, _, _, ok := models.ParseMetafieldColumn(header); ok {
		return BucketMetafield
	}
	if _, ok := coreFields[header]; ok {
		return BucketCore
	}
	if opts.DetectGoogleShopping && strings.HasPrefix(header, googleShoppingPrefix) {
		return BucketGoogleShopping
	}
	if opts.DetectVariantFields && strings.HasPrefix(header, models.VariantPrefix) {
		return BucketVariant
	}
	if opts.DetectMarketPricing && marketPricingRe.MatchString(header) {
		return BucketMarketPricing
	}
	if optionSlotRe.MatchString(header) {
		return BucketStandard
	}
	if _, ok := standardFields[header]; ok {
		return BucketStandard
	}
	for _, re := range opts.CustomPatterns {
		if re.MatchString(header) {
			return BucketCustom
		}
	}
	return BucketCustom
}
