package imaging

import (
	"fmt"
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// StrokeSample describes the ink color at a sampled point on a drawing.
//
// Plan sets occasionally use color to distinguish disciplines (grading in
// gray, utilities in blue). The sample is reported alongside classified
// line segments so a reviewer can spot off-discipline linework.
type StrokeSample struct {
	Hex string  `json:"hex"` // "#rrggbb"
	R   uint8   `json:"r"`
	G   uint8   `json:"g"`
	B   uint8   `json:"b"`
	H   float64 `json:"h"` // Hue in degrees (0-360)
	S   float64 `json:"s"` // Saturation (0-1)
	L   float64 `json:"l"` // Luminance (0-1)
}

// SampleStroke reads the color at (x, y) in the source raster.
//
// Returns an error if the coordinate lies outside the image bounds.
// HSL components come from go-colorful's HCL-free Hsl conversion, which is
// stable for the near-grayscale inks typical of scanned sheets.
func SampleStroke(img image.Image, x, y int) (*StrokeSample, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		// Fully transparent pixel; treat as paper white
		c = colorful.Color{R: 1, G: 1, B: 1}
	}

	h, s, l := c.Hsl()
	r8, g8, b8 := c.RGB255()

	return &StrokeSample{
		Hex: c.Hex(),
		R:   r8,
		G:   g8,
		B:   b8,
		H:   h,
		S:   s,
		L:   l,
	}, nil
}

// IsDarkInk reports whether a sample is plausibly drawn linework rather
// than paper background. Scanned sheets put ink well below mid luminance.
func (s *StrokeSample) IsDarkInk() bool {
	return s.L < 0.5
}
