package detection

import "math"

// Associate retains the segments whose midpoint lies within maxDistance
// of the nearest contour label, annotating each kept segment with that
// distance and the label's role.
//
// Distance is measured from segment midpoint to label box center. This is
// a deliberate approximation of true point-to-segment distance; switching
// would change which segments survive near the threshold, so it stays.
//
// Fallback: when labels is empty there is no spatial information at all,
// and filtering everything out would silently discard every real contour
// whenever OCR has a bad day. Instead ALL segments are retained and
// fallbackUsed is returned true so the verdict can carry a lowered
// confidence. Callers must check the flag, not infer it from counts.
//
// The function is pure: inputs are not mutated, output order follows
// input order, and applying it twice with the same labels and threshold
// returns the same set.
func Associate(segments []LineSegment, labels []ContourLabel, maxDistance float64) (kept []LineSegment, fallbackUsed bool) {
	if len(labels) == 0 {
		kept = make([]LineSegment, len(segments))
		copy(kept, segments)
		return kept, true
	}

	kept = make([]LineSegment, 0, len(segments))
	for _, seg := range segments {
		mx, my := seg.Midpoint()

		best := math.Inf(1)
		bestRole := RoleUnspecified
		for _, lab := range labels {
			cx, cy := lab.Center()
			d := math.Hypot(mx-cx, my-cy)
			if d < best {
				best = d
				bestRole = lab.Role
			}
		}

		if best <= maxDistance {
			seg.NearestLabelDistance = best
			seg.NearestLabelRole = bestRole
			kept = append(kept, seg)
		}
	}
	return kept, false
}
