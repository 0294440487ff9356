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
	"github.com/badno/shopcsv/pkg/models"
)

var parseShowSchema bool

var parseCmd = &cobra.Command{
	Use:   "parse [csv-file]",
	Short: "Parse a Shopify CSV export",
	Long:  `Parse a Shopify product export and show the resulting product hierarchy.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseShowSchema, "schema", false, "Also show the column classification report")
}

// loadCollection parses a CSV file with the classifier settings from
// the active configuration.
func loadCollection(path string) (*models.Collection, *schema.Report, error) {
	cfg, err := config.Load()
	if err != nil {
		color.Yellow("  Warning: Could not load config, using defaults")
		cfg = config.DefaultConfig()
	}

	opts, err := cfg.Schema.Options()
	if err != nil {
		return nil, nil, err
	}

	return parser.ParseFile(path, parser.Options{Schema: &opts})
}

func runParse(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)
	info := color.New(color.FgYellow)

	header.Println("\n  PARSING SHOPIFY EXPORT")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	if _, err := os.Stat(csvFile); os.IsNotExist(err) {
		color.Red("  Error: File not found: %s", csvFile)
		return fmt.Errorf("file not found: %s", csvFile)
	}

	info.Printf("  Source: %s\n\n", csvFile)

	collection, report, err := loadCollection(csvFile)
	if err != nil {
		color.Red("  Error parsing CSV: %v", err)
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Handle", "Title", "Variants", "Images", "Metafields"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)
	table.SetColumnColor(
		tablewriter.Colors{tablewriter.FgYellowColor},
		tablewriter.Colors{},
		tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgGreenColor},
		tablewriter.Colors{},
	)

	totalVariants := 0
	totalImages := 0
	for _, p := range collection.Products() {
		totalVariants += len(p.Variants)
		totalImages += len(p.Images)

		title := p.Title()
		if len(title) > 35 {
			title = title[:32] + "..."
		}
		imgCount := fmt.Sprintf("%d", len(p.Images))
		if len(p.Images) == 0 {
			imgCount = color.RedString("none")
		}
		table.Append([]string{
			p.Handle(),
			title,
			fmt.Sprintf("%d", len(p.Variants)),
			imgCount,
			fmt.Sprintf("%d", len(p.Metafields)),
		})
	}
	table.Render()
	fmt.Println()

	success.Printf("  ✓ Parsed %d products (%d variants, %d images)\n", collection.Len(), totalVariants, totalImages)
	fmt.Println()

	if parseShowSchema && report != nil {
		renderSchemaReport(report)
	}

	return nil
}
