package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/badno/shopcsv/internal/output"
	"github.com/badno/shopcsv/pkg/models"
)

const JSONAdapterName = "json"

// JSONConfig holds JSON file output configuration
type JSONConfig struct {
	OutputDir string // Directory for output files
	Pretty    bool   // Indent output
}

// JSONAdapter implements the output.Adapter interface for JSON files
type JSONAdapter struct {
	*output.BaseAdapter
	config JSONConfig
}

// NewJSONAdapter creates a new JSON file adapter
func NewJSONAdapter(cfg JSONConfig) *JSONAdapter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}

	return &JSONAdapter{
		BaseAdapter: output.NewBaseAdapter(
			JSONAdapterName,
			[]output.Format{output.FormatJSON, output.FormatJSONL},
		),
		config: cfg,
	}
}

// Connect creates the output directory
func (a *JSONAdapter) Connect(ctx context.Context) error {
	if err := os.MkdirAll(a.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	a.SetConnected(true)
	return nil
}

// Close cleans up resources
func (a *JSONAdapter) Close() error {
	a.SetConnected(false)
	return nil
}

// Test verifies the output directory is writable
func (a *JSONAdapter) Test(ctx context.Context) error {
	testFile := filepath.Join(a.config.OutputDir, ".test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	f.Close()
	os.Remove(testFile)
	return nil
}

// productDoc is the JSON shape of one product. Raw rows keep their
// column order through the Row marshaller; metafields flatten to
// "namespace.key" → raw value.
type productDoc struct {
	Handle     string            `json:"handle"`
	Fields     *models.Row       `json:"fields"`
	Metafields map[string]string `json:"metafields,omitempty"`
	Images     []models.Image    `json:"images,omitempty"`
	Variants   []variantDoc      `json:"variants,omitempty"`
}

type variantDoc struct {
	SKU        string            `json:"sku,omitempty"`
	IsDefault  bool              `json:"is_default,omitempty"`
	Options    []models.Option   `json:"options"`
	Fields     *models.Row       `json:"fields"`
	Metafields map[string]string `json:"metafields,omitempty"`
}

func buildDoc(p *models.Product) productDoc {
	doc := productDoc{
		Handle:     p.Handle(),
		Fields:     p.Fields,
		Metafields: metafieldValues(p.Metafields),
		Images:     p.Images,
	}
	for _, v := range p.Variants {
		doc.Variants = append(doc.Variants, variantDoc{
			SKU:        v.SKU(),
			IsDefault:  v.IsDefault(),
			Options:    v.Options,
			Fields:     v.Fields,
			Metafields: metafieldValues(v.Metafields),
		})
	}
	return doc
}

func metafieldValues(views map[string]*models.Metafield) map[string]string {
	if len(views) == 0 {
		return nil
	}
	out := make(map[string]string, len(views))
	for key, m := range views {
		out[key] = m.Value()
	}
	return out
}

// ExportCollection exports products to a JSON or JSONL file
func (a *JSONAdapter) ExportCollection(ctx context.Context, c *models.Collection, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{
		StartedAt: time.Now(),
	}

	if !a.IsConnected() {
		if err := a.Connect(ctx); err != nil {
			result.Error = err
			return result, err
		}
	}

	filtered := output.Filter(c, opts)

	if opts.DryRun {
		result.ProductsExported = filtered.Len()
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would export %d products", filtered.Len())
		result.CompletedAt = time.Now()
		return result, nil
	}

	ext := "json"
	if opts.Format == output.FormatJSONL {
		ext = "jsonl"
	}
	filename := opts.OutputPath
	if filename == "" {
		timestamp := time.Now().Format("2006-01-02_150405")
		filename = filepath.Join(a.config.OutputDir, fmt.Sprintf("products_%s.%s", timestamp, ext))
	}

	f, err := os.Create(filename)
	if err != nil {
		result.Error = err
		return result, err
	}
	defer f.Close()

	switch opts.Format {
	case output.FormatJSONL:
		enc := json.NewEncoder(f)
		for _, p := range filtered.Products() {
			if err := enc.Encode(buildDoc(p)); err != nil {
				result.Error = err
				return result, err
			}
		}
	default:
		docs := make([]productDoc, 0, filtered.Len())
		for _, p := range filtered.Products() {
			docs = append(docs, buildDoc(p))
		}
		enc := json.NewEncoder(f)
		if a.config.Pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(docs); err != nil {
			result.Error = err
			return result, err
		}
	}

	result.Destination = filename
	result.ProductsExported = filtered.Len()
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d products to %s", filtered.Len(), filename)
	result.CompletedAt = time.Now()

	return result, nil
}
