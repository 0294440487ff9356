package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/badno/shopcsv/internal/config"
	"github.com/badno/shopcsv/internal/database/clickhouse"
)

var syncInitSchema bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync export data to the warehouse",
	Long:  `Push parsed export data to the ClickHouse warehouse for analysis.`,
}

var syncPricesCmd = &cobra.Command{
	Use:   "prices [csv-file]",
	Short: "Sync variant and market prices",
	Long: `Extract the base price of every variant plus its per-market price
columns and insert them into the warehouse as one batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncPrices,
}

func init() {
	syncPricesCmd.Flags().BoolVar(&syncInitSchema, "init-schema", false, "Create the price table before syncing")

	syncCmd.AddCommand(syncPricesCmd)
}

// getCHClient creates a ClickHouse client from configuration
func getCHClient() (*clickhouse.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	chConfig := clickhouse.DefaultConfig()
	chConfig.Host = cfg.Outputs.ClickHouse.Host
	chConfig.Port = cfg.Outputs.ClickHouse.Port
	chConfig.Database = cfg.Outputs.ClickHouse.Database
	chConfig.Username = os.Getenv(cfg.Outputs.ClickHouse.UsernameEnv)
	chConfig.Password = os.Getenv(cfg.Outputs.ClickHouse.PasswordEnv)
	chConfig.Table = cfg.Outputs.ClickHouse.Table
	chConfig.Secure = cfg.Outputs.ClickHouse.Secure

	return clickhouse.NewClient(chConfig), nil
}

func runSyncPrices(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  SYNCING PRICES TO CLICKHOUSE")
	fmt.Println("  " + strings.Repeat("─", 45))
	fmt.Println()

	collection, _, err := loadCollection(csvFile)
	if err != nil {
		color.Red("  Error parsing CSV: %v", err)
		return err
	}

	records := clickhouse.ExtractPrices(collection)
	if len(records) == 0 {
		color.Yellow("  No price data found in %s", csvFile)
		return nil
	}

	color.Yellow("  Found %d price records across %d products\n\n", len(records), collection.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := getCHClient()
	if err != nil {
		return err
	}

	fmt.Println("  Connecting to ClickHouse...")
	if err := client.Connect(ctx); err != nil {
		color.Red("  Error connecting: %v", err)
		return err
	}
	defer client.Close()

	success.Println("  ✓ Connected")

	if syncInitSchema {
		if err := client.InitSchema(ctx); err != nil {
			color.Red("  Error creating schema: %v", err)
			return err
		}
		success.Println("  ✓ Price table ready")
	}

	syncer := clickhouse.NewSyncer(client)
	result, err := syncer.SyncPrices(ctx, collection)
	if err != nil {
		color.Red("  Error syncing prices: %v", err)
		return err
	}

	fmt.Println()
	success.Printf("  ✓ Synced %d price records in %s\n", result.RecordsSynced, result.Duration().Round(time.Millisecond))
	success.Printf("  ✓ Batch: %s\n", result.BatchID)
	if len(result.Errors) > 0 {
		color.Yellow("  ⚠ %d records skipped:", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %v\n", e)
		}
	}
	fmt.Println()

	return nil
}
