package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	disimg "github.com/disintegration/imaging"
)

// PreprocessForOCR prepares a scanned sheet for text recognition.
//
// Scanned plan sheets are typically light paper with dark linework and
// annotation. OCR accuracy improves with a grayscale, contrast-stretched,
// lightly sharpened input. The steps mirror the usual denoise-then-enhance
// treatment for engineering scans.
func PreprocessForOCR(img image.Image) image.Image {
	out := disimg.Grayscale(img)
	out = disimg.AdjustContrast(out, 20)
	out = disimg.Sharpen(out, 0.5)
	return out
}

// PreprocessForLines prepares a scanned sheet for edge and line detection.
//
// Text and hatching produce short, high-frequency edges that pollute the
// Hough accumulator. A Gaussian blur suppresses them while long strokes
// (contours, streets, lot lines) survive. Sigma 1.4 matches the kernel
// assumed by the edge detector.
func PreprocessForLines(img image.Image) image.Image {
	gray := effect.Grayscale(img)
	return blur.Gaussian(gray, 1.4)
}
