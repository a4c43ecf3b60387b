package detection

import (
	"strconv"
	"strings"

	"github.com/mkellner/escval/internal/ocr"
)

// LabelOptions controls contour label recognition.
type LabelOptions struct {
	// ElevationMin and ElevationMax bound the plausible elevation range
	// for the numeric predicate. Regionally calibrated; see config.
	ElevationMin float64
	ElevationMax float64
}

// contourKeywords promote a detection to a contour label on substring
// match. Deliberately permissive: "ex" also matches inside unrelated
// words, which is an accepted recall-over-precision tradeoff. The
// spatial association stage absorbs the extra noise.
var contourKeywords = []string{
	"contour",
	"existing",
	"proposed",
	"elevation",
	"elev",
	"prop",
	"ex",
}

var existingSynonyms = []string{"existing", "exist", "ex.", "ex "}
var proposedSynonyms = []string{"proposed", "prop", "future", "new"}

// FilterContourLabels decides which OCR detections are contour
// annotations.
//
// A detection is promoted when its text contains a contour keyword or
// parses as a number inside the plausible elevation range. Promoted
// labels are tagged with a role (existing, proposed, unspecified) from
// synonym matching.
func FilterContourLabels(dets []ocr.TextDetection, opts LabelOptions) []ContourLabel {
	labels := make([]ContourLabel, 0)
	for _, d := range dets {
		lower := strings.ToLower(d.Text)

		keyword := containsAny(lower, contourKeywords)
		numeric := isElevation(d.Text, opts.ElevationMin, opts.ElevationMax)
		if !keyword && !numeric {
			continue
		}

		labels = append(labels, ContourLabel{
			TextDetection:      d,
			Role:               labelRole(lower),
			IsNumericElevation: numeric && !keyword,
		})
	}
	return labels
}

// labelRole tags lowercase label text as existing or proposed.
func labelRole(lower string) Role {
	if containsAny(lower, existingSynonyms) {
		return RoleExisting
	}
	if containsAny(lower, proposedSynonyms) {
		return RoleProposed
	}
	return RoleUnspecified
}

// isElevation reports whether text parses as a number within [min, max].
func isElevation(text string, min, max float64) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return false
	}
	return v >= min && v <= max
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
