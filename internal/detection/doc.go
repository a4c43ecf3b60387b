// Package detection implements line extraction, classification, and the
// contour reasoning stages of sheet validation.
//
// # Pipeline
//
// The stages run in a fixed order over immutable inputs:
//
//  1. ExtractSegments: Hough transform over the edge map, producing
//     straight segments with gap bridging and a minimum-length floor
//  2. ClassifySegment: intensity sampling along each segment, yielding a
//     solid/dashed/unknown verdict with confidence
//  3. FilterContourLabels: lexical and numeric filtering of OCR output
//     into contour annotations with existing/proposed roles
//  4. Associate: proximity filtering that keeps only segments near a
//     contour label, eliminating streets and lot lines
//  5. VerifyConventions: aggregate verdict on the existing=dashed /
//     proposed=solid drafting convention
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Segments and OCR boxes share the same pixel space, which is what makes
// the midpoint-to-label distance in Associate meaningful.
//
// # Degradation, Not Failure
//
// Every stage treats empty input as a valid outcome. No lines, no labels,
// and no classifiable segments each produce a defined result with reduced
// confidence rather than an error; the single deliberate special case is
// Associate's empty-label fallback, which retains all segments and flags
// the run.
//
// # Confidence Scores
//
// Classification confidence is 0 to 1: coverage-derived for solid lines,
// transition-derived for dashed, zero for unknown. Verdict confidence is
// the per-group mean of agreeing segment confidences.
package detection
