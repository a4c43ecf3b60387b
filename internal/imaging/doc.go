// Package imaging provides the raster-processing primitives for sheet
// validation.
//
// This package converts rasterized drawing pages into the intermediate
// forms the detection stages consume. It implements Canny edge detection
// in pure Go, page-specific preprocessing, a decoded-page cache, and ink
// color sampling.
//
// # Processing Paths
//
// Two preprocessing paths exist because OCR and line detection want
// opposite treatments:
//
//   - PreprocessForOCR: grayscale, contrast stretch, light sharpen.
//     Crisp glyph boundaries improve recognition.
//   - PreprocessForLines: grayscale, Gaussian blur. Suppresses text and
//     hatching so the Hough accumulator sees long strokes, not glyphs.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// EdgeImage addresses pixels in the source image's coordinate space, so
// edge coordinates can be compared directly against OCR bounding boxes.
//
// # Performance Considerations
//
// Edge detection iterates over every pixel several times. A full sheet at
// 300 DPI (~7000x10000px) takes a few seconds; the page cache ensures the
// expensive decode happens once per page even though OCR preprocessing,
// line preprocessing, and stroke sampling all read the same raster.
package imaging
