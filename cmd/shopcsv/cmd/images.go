package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/badno/shopcsv/internal/config"
	"github.com/badno/shopcsv/internal/images"
)

var (
	fetchLimit int
	resizeSize int
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Manage product images",
	Long:  `Fetch and resize the images referenced by an export.`,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [csv-file]",
	Short: "Download the images of an export",
	Long:  `Download every image URL referenced by the export's products.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Resize downloaded images to square format",
	Long:  `Center-crop and resize downloaded images to square format (default 800x800).`,
	RunE:  runResize,
}

func init() {
	fetchCmd.Flags().IntVarP(&fetchLimit, "limit", "l", 0, "Limit number of images to fetch (0 = all)")
	resizeCmd.Flags().IntVarP(&resizeSize, "size", "s", 800, "Target size for square images")

	imagesCmd.AddCommand(fetchCmd)
	imagesCmd.AddCommand(resizeCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	csvFile := args[0]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  FETCHING PRODUCT IMAGES")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	collection, _, err := loadCollection(csvFile)
	if err != nil {
		color.Red("  Error parsing CSV: %v", err)
		return err
	}

	downloads := images.CollectDownloads(collection)
	if len(downloads) == 0 {
		color.Yellow("  No image URLs found in %s", csvFile)
		return nil
	}

	if fetchLimit > 0 && fetchLimit < len(downloads) {
		downloads = downloads[:fetchLimit]
	}

	color.Yellow("  Found %d images to download\n\n", len(downloads))

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	fetcher := images.NewFetcher(cfg.Images.OutputDir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	bar := progressbar.NewOptions(len(downloads),
		progressbar.OptionSetDescription("  Downloading images"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowBytes(true),
	)

	type fetchResult struct {
		handle string
		path   string
		size   string
		failed bool
	}

	downloaded := 0
	failed := 0
	var results []fetchResult

	for _, d := range downloads {
		path, size, err := fetcher.Fetch(ctx, d)
		bar.Add(1)

		if err != nil {
			results = append(results, fetchResult{handle: d.Handle, size: "-", failed: true})
			failed++
		} else {
			results = append(results, fetchResult{handle: d.Handle, path: path, size: size})
			downloaded++
		}
	}
	fmt.Println()
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Handle", "File", "Size", "Status"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)

	for _, r := range results {
		filename := "-"
		if r.path != "" {
			parts := strings.Split(r.path, "/")
			filename = parts[len(parts)-1]
		}
		status := color.GreenString("downloaded")
		if r.failed {
			status = color.RedString("failed")
		}
		table.Append([]string{r.handle, filename, r.size, status})
	}
	table.Render()
	fmt.Println()

	if downloaded > 0 {
		success.Printf("  ✓ Downloaded %d images to %s/\n", downloaded, cfg.Images.OutputDir)
	}
	if failed > 0 {
		color.Red("  ✗ Failed to download %d images\n", failed)
	}
	fmt.Println()

	return nil
}

func runResize(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  RESIZING IMAGES TO SQUARE FORMAT")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	resizer := images.NewResizer(cfg.Images.OutputDir, "")
	imagesToResize, err := resizer.FindOriginals()
	if err != nil || len(imagesToResize) == 0 {
		color.Yellow("  No images found in %s/", cfg.Images.OutputDir)
		color.Yellow("  Run 'shopcsv images fetch' first.")
		return nil
	}

	color.Yellow("  Found %d images to resize to %dx%d\n\n", len(imagesToResize), resizeSize, resizeSize)

	bar := progressbar.NewOptions(len(imagesToResize),
		progressbar.OptionSetDescription("  Resizing images"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)

	resized := 0
	failed := 0
	for _, imgPath := range imagesToResize {
		if _, err := resizer.ResizeSquare(imgPath, resizeSize); err != nil {
			failed++
		} else {
			resized++
		}
		bar.Add(1)
	}
	fmt.Println()
	fmt.Println()

	if resized > 0 {
		success.Printf("  ✓ Resized %d images to output/resized/%d/\n", resized, resizeSize)
	}
	if failed > 0 {
		color.Red("  ✗ Failed to resize %d images\n", failed)
	}
	fmt.Println()

	return nil
}
