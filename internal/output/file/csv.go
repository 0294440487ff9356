package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/badno/shopcsv/internal/output"
	"github.com/badno/shopcsv/internal/serializer"
	"github.com/badno/shopcsv/pkg/models"
)

const CSVAdapterName = "csv"

// CSVConfig holds CSV file output configuration
type CSVConfig struct {
	OutputDir string // Directory for output files
}

// CSVAdapter implements the output.Adapter interface for Shopify CSV
// files
type CSVAdapter struct {
	*output.BaseAdapter
	config CSVConfig
}

// NewCSVAdapter creates a new CSV file adapter
func NewCSVAdapter(cfg CSVConfig) *CSVAdapter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}

	return &CSVAdapter{
		BaseAdapter: output.NewBaseAdapter(
			CSVAdapterName,
			[]output.Format{output.FormatShopifyCSV},
		),
		config: cfg,
	}
}

// Connect creates the output directory
func (a *CSVAdapter) Connect(ctx context.Context) error {
	if err := os.MkdirAll(a.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	a.SetConnected(true)
	return nil
}

// Close cleans up resources
func (a *CSVAdapter) Close() error {
	a.SetConnected(false)
	return nil
}

// Test verifies the output directory is writable
func (a *CSVAdapter) Test(ctx context.Context) error {
	testFile := filepath.Join(a.config.OutputDir, ".test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	f.Close()
	os.Remove(testFile)
	return nil
}

// ExportCollection serializes the collection back to the grouped-row
// CSV convention and writes it to a file.
func (a *CSVAdapter) ExportCollection(ctx context.Context, c *models.Collection, opts output.ExportOptions) (*output.ExportResult, error) {
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
	_, rows := serializer.Rows(filtered)

	if opts.DryRun {
		result.ProductsExported = filtered.Len()
		result.RowsWritten = len(rows)
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would write %d rows for %d products", len(rows), filtered.Len())
		result.CompletedAt = time.Now()
		return result, nil
	}

	filename := opts.OutputPath
	if filename == "" {
		timestamp := time.Now().Format("2006-01-02_150405")
		filename = filepath.Join(a.config.OutputDir, fmt.Sprintf("products_%s.csv", timestamp))
	}

	if err := serializer.WriteFile(filename, filtered); err != nil {
		result.Error = err
		return result, err
	}

	result.Destination = filename
	result.ProductsExported = filtered.Len()
	result.RowsWritten = len(rows)
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d products (%d rows) to %s", filtered.Len(), len(rows), filename)
	result.CompletedAt = time.Now()

	return result, nil
}
