package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/badno/shopcsv/internal/serializer"
	"github.com/badno/shopcsv/pkg/models"
)

var (
	convertAddTags       []string
	convertRemoveTags    []string
	convertSetStatus     string
	convertSetFields     []string
	convertSetMetafields []string
	convertAddColumns    []string
	convertOutput        string
)

var convertCmd = &cobra.Command{
	Use:   "convert [csv-file]",
	Short: "Apply bulk transformations to an export",
	Long: `Parse an export, apply tag, status, field and metafield edits to
every product, and serialize the result back to the grouped-row CSV
convention. Columns the toolkit does not know about pass through
untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringArrayVar(&convertAddTags, "add-tag", nil, "Tag to add to every product (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertRemoveTags, "remove-tag", nil, "Tag to remove from every product (repeatable)")
	convertCmd.Flags().StringVar(&convertSetStatus, "set-status", "", "Status to set on every product (active, draft, archived)")
	convertCmd.Flags().StringArrayVar(&convertSetFields, "set-field", nil, "Column=value to set on every product (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertSetMetafields, "set-metafield", nil, "namespace.key=value to set on every product (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertAddColumns, "add-metafield-column", nil, "Metafield column header to add to every row (repeatable)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file path (default: <input>.converted.csv)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  CONVERTING EXPORT")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	collection, _, err := loadCollection(csvFile)
	if err != nil {
		color.Red("  Error parsing CSV: %v", err)
		return err
	}

	color.Yellow("  Loaded %d products\n\n", collection.Len())

	for _, headerCol := range convertAddColumns {
		if err := collection.AddMetafieldColumn(headerCol); err != nil {
			color.Red("  Error adding metafield column: %v", err)
			return err
		}
		success.Printf("  ✓ Added column %q\n", headerCol)
	}

	if convertSetStatus != "" {
		collection.SetFieldAll(models.ColStatus, convertSetStatus)
		success.Printf("  ✓ Set status %q on %d products\n", convertSetStatus, collection.Len())
	}

	for _, kv := range convertSetFields {
		column, value, err := splitAssignment(kv)
		if err != nil {
			color.Red("  Error: %v", err)
			return err
		}
		collection.SetFieldAll(column, value)
		success.Printf("  ✓ Set %q = %q on %d products\n", column, value, collection.Len())
	}

	tagged := 0
	untagged := 0
	metafieldEdits := 0
	for _, p := range collection.Products() {
		for _, tag := range convertAddTags {
			if !p.HasTag(tag) {
				p.AddTag(tag)
				tagged++
			}
		}
		for _, tag := range convertRemoveTags {
			if p.RemoveTag(tag) {
				untagged++
			}
		}
		for _, kv := range convertSetMetafields {
			key, value, err := splitAssignment(kv)
			if err != nil {
				color.Red("  Error: %v", err)
				return err
			}
			if err := p.SetMetafieldValue(key, value); err != nil {
				color.Yellow("  ⚠ %s: %v", p.Handle(), err)
				continue
			}
			metafieldEdits++
		}
	}

	if tagged > 0 {
		success.Printf("  ✓ Added %d tags\n", tagged)
	}
	if untagged > 0 {
		success.Printf("  ✓ Removed %d tags\n", untagged)
	}
	if metafieldEdits > 0 {
		success.Printf("  ✓ Applied %d metafield edits\n", metafieldEdits)
	}
	fmt.Println()

	outPath := convertOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(csvFile, ".csv") + ".converted.csv"
	}

	if err := serializer.WriteFile(outPath, collection); err != nil {
		color.Red("  Error writing output: %v", err)
		return err
	}

	_, rows := serializer.Rows(collection)
	success.Printf("  ✓ Wrote %d rows to %s\n", len(rows), outPath)
	fmt.Println()

	return nil
}

func splitAssignment(kv string) (string, string, error) {
	idx := strings.Index(kv, "=")
	if idx <= 0 {
		return "", "", fmt.Errorf("expected key=value, got %q", kv)
	}
	return kv[:idx], kv[idx+1:], nil
}
