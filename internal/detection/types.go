package detection

import (
	"math"

	"github.com/mkellner/escval/internal/imaging"
	"github.com/mkellner/escval/internal/ocr"
)

// Classification is the solid/dashed verdict for a line segment.
type Classification string

const (
	Solid   Classification = "solid"
	Dashed  Classification = "dashed"
	Unknown Classification = "unknown"
)

// Role tags a contour label as describing existing or proposed grade.
type Role string

const (
	RoleExisting    Role = "existing"
	RoleProposed    Role = "proposed"
	RoleUnspecified Role = "unspecified"
)

// LineSegment is a straight stroke extracted from the edge map.
//
// Classification fields are populated by ClassifySegment; association
// fields by Associate. NearestLabelDistance is -1 until a label has been
// associated (or when the empty-label fallback retained the segment).
type LineSegment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	Classification Classification `json:"classification"`

	// Confidence of the classification, 0 to 1.
	Confidence float64 `json:"confidence"`

	// NearestLabelDistance is the midpoint distance to the closest
	// contour label, in pixels. -1 when no label was associated.
	NearestLabelDistance float64 `json:"nearest_label_distance"`

	// NearestLabelRole is the role of the closest contour label.
	NearestLabelRole Role `json:"nearest_label_role"`

	// Stroke is the sampled ink color at the segment midpoint, when
	// stroke sampling is enabled.
	Stroke *imaging.StrokeSample `json:"stroke,omitempty"`
}

// Length returns the segment length in pixels.
func (s LineSegment) Length() float64 {
	dx := float64(s.X2 - s.X1)
	dy := float64(s.Y2 - s.Y1)
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the segment midpoint.
func (s LineSegment) Midpoint() (float64, float64) {
	return float64(s.X1+s.X2) / 2, float64(s.Y1+s.Y2) / 2
}

// ContourLabel is a text detection promoted to a contour annotation.
//
// Only detections passing the keyword or numeric-elevation predicate are
// promoted; see FilterContourLabels.
type ContourLabel struct {
	ocr.TextDetection

	// Role records whether the label marks existing or proposed grade.
	Role Role `json:"role"`

	// IsNumericElevation is true when the text parsed as an elevation
	// value rather than matching a keyword.
	IsNumericElevation bool `json:"is_numeric_elevation"`
}
