package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/badno/shopcsv/pkg/models"
)

// Download represents one image to fetch, named after its owning
// product and gallery position.
type Download struct {
	URL      string
	Handle   string
	Position string
}

// CollectDownloads lists every image URL in the collection.
func CollectDownloads(c *models.Collection) []Download {
	var downloads []Download
	for _, p := range c.Products() {
		for i, img := range p.Images {
			if img.Src == "" {
				continue
			}
			pos := img.Position
			if pos == "" {
				pos = fmt.Sprintf("%d", i+1)
			}
			downloads = append(downloads, Download{
				URL:      img.Src,
				Handle:   p.Handle(),
				Position: pos,
			})
		}
	}
	return downloads
}

// Fetcher handles downloading images
type Fetcher struct {
	client    *http.Client
	outputDir string
}

// NewFetcher creates a new image fetcher writing into outputDir
func NewFetcher(outputDir string) *Fetcher {
	if outputDir == "" {
		outputDir = "output/originals"
	}
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		outputDir: outputDir,
	}
}

// Fetch downloads one image and saves it locally. The file is named
// <handle>_<position> with the extension taken from the URL.
func (f *Fetcher) Fetch(ctx context.Context, d Download) (string, string, error) {
	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return "", "", err
	}

	ext := ".jpg"
	if strings.Contains(d.URL, ".png") {
		ext = ".png"
	} else if strings.Contains(d.URL, ".webp") {
		ext = ".webp"
	}

	filename := fmt.Sprintf("%s_%s%s", d.Handle, d.Position, ext)
	destPath := filepath.Join(f.outputDir, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to download: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", "", err
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", "", err
	}

	return destPath, formatSize(n), nil
}

// ValidateURL checks if a URL is accessible (returns HTTP 200)
func (f *Fetcher) ValidateURL(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// FetchWithValidation downloads an image only if it passes validation
func (f *Fetcher) FetchWithValidation(ctx context.Context, d Download) (string, string, error) {
	valid, err := f.ValidateURL(ctx, d.URL)
	if err != nil {
		return "", "", fmt.Errorf("validation failed: %w", err)
	}
	if !valid {
		return "", "", fmt.Errorf("URL returned non-200 status")
	}
	return f.Fetch(ctx, d)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
