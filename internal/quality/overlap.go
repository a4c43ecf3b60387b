// Package quality checks OCR output for layout defects: labels drawn on
// top of each other, and labels placed too far from the features they
// annotate.
package quality

import (
	"math"

	"github.com/mkellner/escval/internal/ocr"
)

// Severity grades how badly a defect impairs readability.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityMinor    Severity = "minor"
)

// OverlapIssue records two text detections whose bounding boxes overlap.
type OverlapIssue struct {
	A TextRef `json:"a"`
	B TextRef `json:"b"`

	// OverlapPercent is the intersection area as a percentage of the
	// smaller box's area. A small label fully inside a large one reads
	// 100: the "is this label obscured" semantic wants the smaller
	// denominator, not the union.
	OverlapPercent float64 `json:"overlap_percent"`

	Severity Severity `json:"severity"`
}

// TextRef carries enough of a detection to identify it in a report.
type TextRef struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

func refOf(d ocr.TextDetection) TextRef {
	return TextRef{Text: d.Text, Confidence: d.Confidence, X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2}
}

// OverlapOptions controls which pairs are examined and which overlaps
// are reported.
type OverlapOptions struct {
	// MinOverlapPercent drops overlaps below this percentage.
	MinOverlapPercent float64

	// LowConfidenceFloor skips pairs where both confidences fall below
	// this score; such pairs are usually OCR noise, not layout defects.
	LowConfidenceFloor float64

	// SkipSingleChars skips pairs where both texts are single characters.
	SkipSingleChars bool

	// SkipDuplicateText skips pairs with identical text, which are
	// almost always one word detected twice.
	SkipDuplicateText bool
}

// FindOverlaps reports overlapping text pairs among the detections.
//
// Every unordered pair is tested once. The result is invariant under
// permutation of the input: the same pairs, percentages, and severities
// come back regardless of detection order. O(n²) pair scans are fine for
// the 50-900 words of a single sheet.
func FindOverlaps(dets []ocr.TextDetection, opts OverlapOptions) []OverlapIssue {
	issues := make([]OverlapIssue, 0)

	for i := 0; i < len(dets); i++ {
		for j := i + 1; j < len(dets); j++ {
			a, b := dets[i], dets[j]

			if opts.SkipDuplicateText && a.Text == b.Text {
				continue
			}
			if opts.SkipSingleChars && len(a.Text) == 1 && len(b.Text) == 1 {
				continue
			}
			if a.Confidence < opts.LowConfidenceFloor && b.Confidence < opts.LowConfidenceFloor {
				continue
			}

			percent, ok := OverlapPercent(a, b)
			if !ok || percent < opts.MinOverlapPercent {
				continue
			}

			issues = append(issues, OverlapIssue{
				A:              refOf(a),
				B:              refOf(b),
				OverlapPercent: percent,
				Severity:       severityFor(percent),
			})
		}
	}
	return issues
}

// OverlapPercent computes the bounding-box overlap between two
// detections as a percentage of the smaller box's area.
//
// Returns ok=false when the boxes do not intersect. Boxes that merely
// touch along an edge do not overlap.
func OverlapPercent(a, b ocr.TextDetection) (percent float64, ok bool) {
	xLeft := math.Max(float64(a.X1), float64(b.X1))
	yTop := math.Max(float64(a.Y1), float64(b.Y1))
	xRight := math.Min(float64(a.X2), float64(b.X2))
	yBottom := math.Min(float64(a.Y2), float64(b.Y2))

	if xRight <= xLeft || yBottom <= yTop {
		return 0, false
	}

	intersection := (xRight - xLeft) * (yBottom - yTop)
	smaller := math.Min(a.Area(), b.Area())
	if smaller <= 0 {
		return 0, false
	}
	return intersection / smaller * 100, true
}

// severityFor grades an overlap percentage. The boundaries are exclusive
// on the low side: exactly 50 is a warning and exactly 20 is minor.
func severityFor(percent float64) Severity {
	switch {
	case percent > 50:
		return SeverityCritical
	case percent > 20:
		return SeverityWarning
	default:
		return SeverityMinor
	}
}
