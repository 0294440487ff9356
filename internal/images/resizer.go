package images

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Resizer handles image resizing operations
type Resizer struct {
	inputDir  string
	outputDir string
}

// NewResizer creates a new image resizer
func NewResizer(inputDir, outputDir string) *Resizer {
	if inputDir == "" {
		inputDir = "output/originals"
	}
	if outputDir == "" {
		outputDir = "output/resized"
	}
	return &Resizer{
		inputDir:  inputDir,
		outputDir: outputDir,
	}
}

// FindOriginals returns paths to all original images
func (r *Resizer) FindOriginals() ([]string, error) {
	var images []string

	err := filepath.Walk(r.inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".webp" {
			images = append(images, path)
		}
		return nil
	})

	return images, err
}

// ResizeSquare resizes an image to a square with center-crop
func (r *Resizer) ResizeSquare(srcPath string, size int) (string, error) {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return "", err
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var cropped image.Image
	if width > height {
		offset := (width - height) / 2
		cropped = imaging.Crop(src, image.Rect(offset, 0, offset+height, height))
	} else if height > width {
		offset := (height - width) / 2
		cropped = imaging.Crop(src, image.Rect(0, offset, width, offset+width))
	} else {
		cropped = imaging.Clone(src)
	}

	resized := imaging.Resize(cropped, size, size, imaging.Lanczos)

	sizeDir := filepath.Join(r.outputDir, fmt.Sprintf("%d", size))
	if err := os.MkdirAll(sizeDir, 0755); err != nil {
		return "", err
	}

	filename := filepath.Base(srcPath)
	destPath := filepath.Join(sizeDir, filename)

	if err := imaging.Save(resized, destPath); err != nil {
		return "", err
	}

	return destPath, nil
}
