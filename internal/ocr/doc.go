// Package ocr provides optical character recognition for rasterized
// drawing pages.
//
// Two interchangeable backends sit behind the Engine interface:
//
//   - gosseract: native Tesseract bindings (Linux with CGO). Preferred.
//   - tesseract-cli: shells out to the tesseract binary and parses its
//     TSV output. Portable fallback.
//
// NewEngine tries the preferred backend and falls back with a warning log
// when it cannot initialize (missing shared library, missing binary).
// Callers never see the swap; only the failure of both backends is an
// error.
//
// # Output Contract
//
// Both backends produce word-level TextDetection values: recognized text,
// a 0-100 confidence score, and a pixel-space bounding box with origin at
// the image's top-left corner. FilterDetections removes entries too weak
// or too small for the downstream stages.
//
// # Result Caching
//
// Recognition dominates pipeline runtime, and multiple stages consume the
// same detections. ResultCache stores the single current page's result;
// the pipeline clears it via defer so no entry survives the run.
package ocr
