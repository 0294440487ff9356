package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopcsv",
	Short: "Shopify CSV Toolkit",
	Long: color.New(color.FgCyan, color.Bold).Sprint(`
      _
  ___| |__   ___  _ __   ___ _____   __
 / __| '_ \ / _ \| '_ \ / __/ __\ \ / /
 \__ \ | | | (_) | |_) | (__\__ \\ V /
 |___/_| |_|\___/| .__/ \___|___/ \_/
                 |_|
`) + `
Shopify CSV Toolkit - Grouped-row product export engine

Parse Shopify product exports into a hierarchical model, transform
them in bulk, and serialize them back without losing a column.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(configCmd)
}
