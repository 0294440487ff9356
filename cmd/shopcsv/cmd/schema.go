package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/badno/shopcsv/internal/config"
	"github.com/badno/shopcsv/internal/parser"
	"github.com/badno/shopcsv/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [csv-file]",
	Short: "Classify the columns of a CSV export",
	Long:  `Bucket every column header of an export into its category (core, variant, metafield, market pricing, ...).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

var (
	schemaNoMarketPricing  bool
	schemaNoGoogleShopping bool
	schemaNoVariantFields  bool
	schemaCustomPatterns   []string
)

func init() {
	schemaCmd.Flags().BoolVar(&schemaNoMarketPricing, "no-market-pricing", false, "Classify market price columns as custom")
	schemaCmd.Flags().BoolVar(&schemaNoGoogleShopping, "no-google-shopping", false, "Classify Google Shopping columns as custom")
	schemaCmd.Flags().BoolVar(&schemaNoVariantFields, "no-variant-fields", false, "Classify Variant-prefixed columns as custom")
	schemaCmd.Flags().StringArrayVar(&schemaCustomPatterns, "custom-pattern", nil, "Extra regex matched before the custom fallback (repeatable)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  COLUMN CLASSIFICATION")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	f, err := os.Open(csvFile)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer f.Close()

	headers, _, err := parser.ReadRows(f)
	if err != nil {
		color.Red("  Error reading CSV: %v", err)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		color.Yellow("  Warning: Could not load config, using defaults")
		cfg = config.DefaultConfig()
	}
	if schemaNoMarketPricing {
		cfg.Schema.DetectMarketPricing = false
	}
	if schemaNoGoogleShopping {
		cfg.Schema.DetectGoogleShopping = false
	}
	if schemaNoVariantFields {
		cfg.Schema.DetectVariantFields = false
	}
	cfg.Schema.CustomPatterns = append(cfg.Schema.CustomPatterns, schemaCustomPatterns...)

	opts, err := cfg.Schema.Options()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	report := schema.Classify(headers, opts)
	renderSchemaReport(report)
	return nil
}

func renderSchemaReport(report *schema.Report) {
	header := color.New(color.FgCyan, color.Bold)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Column", "Bucket"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)

	for _, col := range report.Columns {
		name := col.Name
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		bucket := string(col.Bucket)
		switch col.Bucket {
		case schema.BucketCore:
			bucket = color.GreenString(bucket)
		case schema.BucketMetafield:
			bucket = color.YellowString(bucket)
		case schema.BucketCustom:
			bucket = color.RedString(bucket)
		}
		table.Append([]string{name, bucket})
	}
	table.Render()
	fmt.Println()

	header.Println("  BUCKET SUMMARY")
	for _, b := range schema.Buckets {
		if count := report.Counts[b]; count > 0 {
			fmt.Printf("    %-17s %d\n", string(b)+":", count)
		}
	}
	fmt.Println()
}
