package quality

import (
	"math"

	"github.com/mkellner/escval/internal/ocr"
)

// Feature keys with calibrated label-to-feature distance limits.
const (
	FeatureContour    = "contour"
	FeatureSCE        = "sce"
	FeatureConcWash   = "conc_wash"
	FeatureStormDrain = "storm_drain"
	FeatureStreet     = "street"
)

// DefaultProximityRules maps a feature type to the furthest its label
// may sit, in pixels at 300 DPI. Streets tolerate more because street
// names ride the centerline of wide geometry.
var DefaultProximityRules = map[string]float64{
	FeatureContour:    150,
	FeatureSCE:        200,
	FeatureConcWash:   250,
	FeatureStormDrain: 200,
	FeatureStreet:     300,
}

// LabelPlacement pairs a label detection with the drawing feature it is
// expected to annotate.
type LabelPlacement struct {
	Label    ocr.TextDetection
	Feature  string  // rule key, e.g. FeatureContour
	FeatureX float64 // feature reference point
	FeatureY float64
}

// ProximityIssue reports a label sitting too far from its feature.
type ProximityIssue struct {
	Label     TextRef  `json:"label"`
	Feature   string   `json:"feature"`
	Distance  float64  `json:"distance"`
	Threshold float64  `json:"threshold"`
	Severity  Severity `json:"severity"`
}

// CheckProximity validates label placement distances.
//
// Distance is measured from label box center to the feature reference
// point. Beyond the rule threshold is a warning; beyond 1.5x the
// threshold the association itself is doubtful and the issue is
// critical. Rules are in 300 DPI pixel space and scale through
// dpiRatio (actual DPI / 300).
//
// Placements whose feature has no rule are skipped; an unknown feature
// type is a configuration gap, not a drawing defect.
func CheckProximity(placements []LabelPlacement, rules map[string]float64, dpiRatio float64) []ProximityIssue {
	if rules == nil {
		rules = DefaultProximityRules
	}
	if dpiRatio <= 0 {
		dpiRatio = 1
	}

	issues := make([]ProximityIssue, 0)
	for _, p := range placements {
		threshold, ok := rules[p.Feature]
		if !ok {
			continue
		}
		threshold *= dpiRatio

		cx, cy := p.Label.Center()
		dist := math.Hypot(cx-p.FeatureX, cy-p.FeatureY)
		if dist <= threshold {
			continue
		}

		severity := SeverityWarning
		if dist > threshold*1.5 {
			severity = SeverityCritical
		}
		issues = append(issues, ProximityIssue{
			Label:     refOf(p.Label),
			Feature:   p.Feature,
			Distance:  dist,
			Threshold: threshold,
			Severity:  severity,
		})
	}
	return issues
}
