package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// PageCache provides thread-safe caching of decoded page rasters.
//
// A validation run touches the same rasterized page several times (OCR
// preprocessing, line preprocessing, stroke sampling). The cache decodes
// each page file once and hands out the shared image.Image, keyed by file
// path.
//
// Cached rasters at 300 DPI are large (a 24x36in sheet is ~7000x10000px),
// so batch callers should Clear() between documents.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]image.Image
}

// NewPageCache creates an empty page cache ready for concurrent use.
func NewPageCache() *PageCache {
	return &PageCache{
		pages: make(map[string]image.Image),
	}
}

// Load retrieves a page raster from the cache or decodes it from disk.
//
// The raster is cached using the exact path string provided. Supported
// formats are PNG and JPEG.
func (c *PageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.pages[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page raster: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page raster: %w", err)
	}

	c.mu.Lock()
	c.pages[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear drops all cached rasters, freeing their memory.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a single raster from the cache by its path.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.pages, path)
	c.mu.Unlock()
}
