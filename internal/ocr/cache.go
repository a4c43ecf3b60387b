package ocr

import "sync"

// ResultCache holds the OCR result for the page currently being validated.
//
// Several stages read the same OCR output (checklist detection, contour
// label filtering, overlap checking), but recognition is by far the most
// expensive step in the pipeline. The cache is populated by the first OCR
// call of a run and must be cleared unconditionally when the run ends,
// success or failure; a stale entry would silently serve one page's text
// for the next page.
//
// The cache holds exactly one entry, keyed by the source the detections
// were recognized from.
type ResultCache struct {
	mu         sync.Mutex
	key        string
	detections []TextDetection
	populated  bool
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{}
}

// Put stores detections for the given source key, replacing any previous
// entry.
func (c *ResultCache) Put(key string, dets []TextDetection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.detections = dets
	c.populated = true
}

// Get returns the cached detections if the key matches the stored entry.
func (c *ResultCache) Get(key string) ([]TextDetection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.populated || c.key != key {
		return nil, false
	}
	return c.detections, true
}

// Clear empties the cache. Callers defer this at pipeline entry so the
// cache cannot outlive the run that populated it.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = ""
	c.detections = nil
	c.populated = false
}
