package output

import (
	"context"
	"time"

	"github.com/badno/shopcsv/pkg/models"
)

// Format specifies the output format
type Format string

const (
	FormatShopifyCSV Format = "shopify-csv" // Shopify grouped-row CSV
	FormatJSON       Format = "json"        // JSON format
	FormatJSONL      Format = "jsonl"       // JSON Lines format, one product per line
)

// ExportOptions configures export behavior
type ExportOptions struct {
	Format     Format   // Output format
	OutputPath string   // File path or destination
	Handles    []string // Specific product handles to export
	DryRun     bool     // Preview without actually exporting
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Destination      string // Where data was exported
	ProductsExported int    // Number of products exported
	RowsWritten      int    // Number of flat rows written (CSV formats)
	Success          bool
	Error            error
	StartedAt        time.Time
	CompletedAt      time.Time
	Details          string // Human-readable details
}

// Adapter defines the interface for output adapters
type Adapter interface {
	// Name returns the adapter's unique identifier
	Name() string

	// Connect establishes connection to the output destination
	Connect(ctx context.Context) error

	// Close cleans up any resources
	Close() error

	// ExportCollection exports a product collection to the destination
	ExportCollection(ctx context.Context, c *models.Collection, opts ExportOptions) (*ExportResult, error)

	// Test verifies connectivity to the destination
	Test(ctx context.Context) error

	// SupportsFormat checks if the adapter supports a specific format
	SupportsFormat(format Format) bool
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct {
	name      string
	connected bool
	formats   []Format
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(name string, formats []Format) *BaseAdapter {
	return &BaseAdapter{
		name:    name,
		formats: formats,
	}
}

func (b *BaseAdapter) Name() string {
	return b.name
}

func (b *BaseAdapter) IsConnected() bool {
	return b.connected
}

func (b *BaseAdapter) SetConnected(connected bool) {
	b.connected = connected
}

func (b *BaseAdapter) SupportsFormat(format Format) bool {
	for _, f := range b.formats {
		if f == format {
			return true
		}
	}
	return false
}

func (b *BaseAdapter) SupportedFormats() []Format {
	return b.formats
}

// Filter returns the products selected by opts, in collection order.
func Filter(c *models.Collection, opts ExportOptions) *models.Collection {
	if len(opts.Handles) == 0 {
		return c
	}
	wanted := make(map[string]bool, len(opts.Handles))
	for _, h := range opts.Handles {
		wanted[h] = true
	}
	filtered := models.NewCollection()
	for _, p := range c.Products() {
		if wanted[p.Handle()] {
			filtered.Set(p)
		}
	}
	return filtered
}
