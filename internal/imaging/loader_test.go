package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG writes a small PNG to dir and returns its path
func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := createTestImage(20, 10, color.White)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return path
}

func TestPageCache_LoadAndCache(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "page-1.png")

	cache := NewPageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Second load must come from cache even if the file disappears
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove test file: %v", err)
	}
	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if again != img {
		t.Error("expected the cached image instance")
	}
}

func TestPageCache_ClearAndEvict(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "page-2.png")

	cache := NewPageCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path)
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove test file: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("expected error loading evicted entry with file gone")
	}
}

func TestPageCache_MissingFile(t *testing.T) {
	cache := NewPageCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSampleStroke(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(3, 4, color.RGBA{0, 0, 0, 255})

	dark, err := SampleStroke(img, 3, 4)
	if err != nil {
		t.Fatalf("SampleStroke failed: %v", err)
	}
	if dark.Hex != "#000000" {
		t.Errorf("hex: got %s, want #000000", dark.Hex)
	}
	if !dark.IsDarkInk() {
		t.Error("black pixel should classify as ink")
	}

	paper, err := SampleStroke(img, 0, 0)
	if err != nil {
		t.Fatalf("SampleStroke failed: %v", err)
	}
	if paper.IsDarkInk() {
		t.Error("white pixel should not classify as ink")
	}

	if _, err := SampleStroke(img, 50, 50); err == nil {
		t.Error("expected error for out-of-bounds sample")
	}
}
