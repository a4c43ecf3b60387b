package ocr

// TextDetection represents a recognized word with its location and OCR
// confidence.
//
// Coordinates are pixels in the source raster, origin top-left. X1,Y1 is
// the inclusive top-left corner and X2,Y2 the exclusive bottom-right.
type TextDetection struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0 to 100).
	// Higher values indicate more certain recognition.
	Confidence float64 `json:"confidence"`

	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width returns the bounding box width in pixels.
func (d TextDetection) Width() int { return d.X2 - d.X1 }

// Height returns the bounding box height in pixels.
func (d TextDetection) Height() int { return d.Y2 - d.Y1 }

// Area returns the bounding box area in square pixels.
func (d TextDetection) Area() float64 {
	return float64(d.Width()) * float64(d.Height())
}

// Center returns the bounding box center point.
func (d TextDetection) Center() (float64, float64) {
	return float64(d.X1+d.X2) / 2, float64(d.Y1+d.Y2) / 2
}

// minBoxExtent is the smallest box dimension considered a real word.
// Slivers below this are OCR artifacts from linework and hatching.
const minBoxExtent = 5

// FilterDetections drops detections unusable by downstream stages:
// empty text, confidence below minConfidence, and boxes thinner than
// 5px in either dimension.
//
// The input slice is not modified.
func FilterDetections(dets []TextDetection, minConfidence float64) []TextDetection {
	kept := make([]TextDetection, 0, len(dets))
	for _, d := range dets {
		if d.Text == "" {
			continue
		}
		if d.Confidence < minConfidence {
			continue
		}
		if d.Width() < minBoxExtent || d.Height() < minBoxExtent {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
