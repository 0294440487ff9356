package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/badno/shopcsv/internal/config"
	"github.com/badno/shopcsv/internal/output"
	"github.com/badno/shopcsv/internal/output/file"
)

var (
	exportDest       string
	exportFormat     string
	exportOutputPath string
	exportHandles    []string
	exportDryRun     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a parsed collection to various destinations",
	Long:  `Export products to CSV, JSON, or JSON Lines files.`,
}

var exportRunCmd = &cobra.Command{
	Use:   "run [csv-file]",
	Short: "Run export to destination",
	Long:  `Parse an export file and re-export it through the chosen adapter.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available export destinations",
	Long:  `Show all available export adapters.`,
	RunE:  runExportList,
}

func init() {
	exportRunCmd.Flags().StringVar(&exportDest, "dest", "csv", "Export destination (csv, json)")
	exportRunCmd.Flags().StringVar(&exportFormat, "format", "shopify-csv", "Output format (shopify-csv, json, jsonl)")
	exportRunCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "Output file path")
	exportRunCmd.Flags().StringArrayVar(&exportHandles, "handle", nil, "Only export this product handle (repeatable)")
	exportRunCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Preview without exporting")

	exportCmd.AddCommand(exportRunCmd)
	exportCmd.AddCommand(exportListCmd)
}

// buildRegistry wires up the file adapters from configuration.
func buildRegistry(cfg *config.Config) (*output.Registry, error) {
	registry := output.NewRegistry()

	csvAdapter := file.NewCSVAdapter(file.CSVConfig{
		OutputDir: cfg.Outputs.File.OutputDir,
	})
	if err := registry.Register(csvAdapter); err != nil {
		return nil, err
	}

	jsonAdapter := file.NewJSONAdapter(file.JSONConfig{
		OutputDir: cfg.Outputs.File.OutputDir,
		Pretty:    cfg.Outputs.File.Pretty,
	})
	if err := registry.Register(jsonAdapter); err != nil {
		return nil, err
	}

	return registry, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  EXPORTING PRODUCTS")
	fmt.Println("  " + strings.Repeat("─", 50))
	fmt.Println()

	collection, _, err := loadCollection(csvFile)
	if err != nil {
		color.Red("  Error parsing CSV: %v", err)
		return err
	}

	if collection.Len() == 0 {
		color.Yellow("  No products found in %s", csvFile)
		return nil
	}

	color.Yellow("  Found %d products\n", collection.Len())
	color.Yellow("  Destination: %s\n", exportDest)
	color.Yellow("  Format: %s\n", exportFormat)
	if exportDryRun {
		color.Yellow("  Mode: DRY RUN\n")
	}
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		color.Yellow("  Warning: Could not load config, using defaults")
		cfg = config.DefaultConfig()
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer registry.CloseAll()

	adapter, err := registry.Get(exportDest)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	format := output.Format(exportFormat)
	if !adapter.SupportsFormat(format) {
		color.Red("  Error: adapter %s does not support format %s", exportDest, exportFormat)
		return fmt.Errorf("adapter %s does not support format %s", exportDest, exportFormat)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := adapter.Connect(ctx); err != nil {
		color.Red("  Error connecting to destination: %v", err)
		return err
	}

	opts := output.ExportOptions{
		Format:     format,
		OutputPath: exportOutputPath,
		Handles:    exportHandles,
		DryRun:     exportDryRun,
	}

	result, err := adapter.ExportCollection(ctx, collection, opts)
	if err != nil {
		color.Red("  Error during export: %v", err)
		return err
	}

	if result.Success {
		success.Printf("  ✓ Exported %d products\n", result.ProductsExported)
		if result.RowsWritten > 0 {
			success.Printf("  ✓ Wrote %d rows\n", result.RowsWritten)
		}
		if result.Destination != "" {
			success.Printf("  ✓ Output: %s\n", result.Destination)
		}
		success.Printf("  ✓ %s\n", result.Details)
	} else {
		color.Red("  Export failed: %v", result.Error)
	}
	fmt.Println()

	return nil
}

func runExportList(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  AVAILABLE EXPORT DESTINATIONS")
	fmt.Println("  " + strings.Repeat("─", 50))
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Destination", "Formats", "Description"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)

	destinations := []struct {
		name    string
		formats string
		desc    string
	}{
		{"csv", "shopify-csv", "Grouped-row CSV in the Shopify import convention"},
		{"json", "json, jsonl", "Hierarchical JSON file export"},
	}

	for _, d := range destinations {
		table.Append([]string{d.name, d.formats, d.desc})
	}

	table.Render()
	fmt.Println()

	color.Yellow("  Example usage:")
	fmt.Println("    shopcsv export run products.csv --dest csv")
	fmt.Println("    shopcsv export run products.csv --dest json --format jsonl")
	fmt.Println("    shopcsv export run products.csv --handle blue-shirt -o shirt.csv")
	fmt.Println()

	return nil
}
