package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	disimg "github.com/disintegration/imaging"
)

// SaveDebugImage writes an intermediate pipeline image to dir as PNG.
//
// Used by the --save-images CLI flag so a reviewer can inspect what the
// edge detector and preprocessors actually saw. The directory is created
// if missing; the returned path is the written file.
func SaveDebugImage(img image.Image, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create debug image directory: %w", err)
	}
	path := filepath.Join(dir, name+".png")
	if err := disimg.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save debug image %s: %w", name, err)
	}
	return path, nil
}
