package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/badno/shopcsv/internal/config"
	"github.com/badno/shopcsv/internal/database/postgres"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  "Commands for managing the PostgreSQL snapshot backend",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database schema",
	Long:  "Creates all required tables and indexes in the PostgreSQL database",
	RunE:  runDBInit,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	Long:  "Shows connection status and migration version",
	RunE:  runDBStatus,
}

var dbSnapshotCmd = &cobra.Command{
	Use:   "snapshot [csv-file]",
	Short: "Store a parsed export as a snapshot",
	Long:  "Parses an export file and persists the product hierarchy for later comparison",
	Args:  cobra.ExactArgs(1),
	RunE:  runDBSnapshot,
}

var dbSnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored snapshots",
	Long:  "Shows the most recent snapshots, newest first",
	RunE:  runDBSnapshots,
}

var snapshotsLimit int

func init() {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbSnapshotCmd)
	dbCmd.AddCommand(dbSnapshotsCmd)

	dbSnapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "Maximum snapshots to list")
}

// getDBClient creates a PostgreSQL client from configuration
func getDBClient() (*postgres.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pgConfig := postgres.DefaultConfig()
	pgConfig.Host = cfg.Database.Postgres.Host
	pgConfig.Port = cfg.Database.Postgres.Port
	pgConfig.Database = cfg.Database.Postgres.Database
	pgConfig.Username = os.Getenv(cfg.Database.Postgres.UsernameEnv)
	pgConfig.Password = os.Getenv(cfg.Database.Postgres.PasswordEnv)
	pgConfig.SSLMode = cfg.Database.Postgres.SSLMode

	if pgConfig.Username == "" {
		return nil, fmt.Errorf("PostgreSQL username not set. Set the %s environment variable", cfg.Database.Postgres.UsernameEnv)
	}

	return postgres.NewClient(pgConfig), nil
}

func runDBInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Connecting to PostgreSQL...")
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	color.Green("✓ Connected to database")

	fmt.Println("Running migrations...")
	if err := client.RunMigrations(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("✓ Database schema initialized")

	version, dirty, err := client.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration version: %d", version)
	if dirty {
		color.Yellow(" (dirty)")
	}
	fmt.Println()

	color.Green("\n✓ Database initialization complete")
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Checking database connection...")
	if err := client.Connect(ctx); err != nil {
		color.Red("✗ Connection failed: %v", err)
		return nil
	}
	defer client.Close()

	color.Green("✓ Connected")

	version, dirty, err := client.MigrationVersion()
	if err != nil {
		fmt.Printf("  Migration:   %s\n", color.YellowString("not initialized"))
	} else {
		status := fmt.Sprintf("v%d", version)
		if dirty {
			status += color.YellowString(" (dirty)")
		}
		fmt.Printf("  Migration:   %s\n", status)
	}

	return nil
}

func runDBSnapshot(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  STORING SNAPSHOT")
	fmt.Println("  " + strings.Repeat("─", 40))
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

	color.Yellow("  Found %d products\n\n", collection.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("  Connecting to PostgreSQL...")
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	success.Println("  ✓ Connected")

	repo := postgres.NewSnapshotRepo(client)
	snap, err := repo.Create(ctx, csvFile, collection)
	if err != nil {
		color.Red("  Error storing snapshot: %v", err)
		return err
	}

	success.Printf("  ✓ Stored snapshot %s\n", snap.ID)
	fmt.Printf("    Products: %d\n", snap.ProductCount)
	fmt.Printf("    Variants: %d\n", snap.VariantCount)
	fmt.Printf("    Images:   %d\n", snap.ImageCount)
	fmt.Println()

	return nil
}

func runDBSnapshots(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  STORED SNAPSHOTS")
	fmt.Println("  " + strings.Repeat("─", 50))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	repo := postgres.NewSnapshotRepo(client)
	snaps, err := repo.List(ctx, snapshotsLimit)
	if err != nil {
		color.Red("  Error listing snapshots: %v", err)
		return err
	}

	if len(snaps) == 0 {
		color.Yellow("  No snapshots stored. Run 'shopcsv db snapshot <file>' first.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Source", "Products", "Variants", "Images", "Created"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)

	for _, s := range snaps {
		table.Append([]string{
			shortID(s.ID),
			s.Source,
			fmt.Sprintf("%d", s.ProductCount),
			fmt.Sprintf("%d", s.VariantCount),
			fmt.Sprintf("%d", s.ImageCount),
			s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	fmt.Println()

	return nil
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
