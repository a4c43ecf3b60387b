package detection

// ConventionVerdict summarizes whether the sheet follows the drafting
// convention for existing versus proposed contours.
type ConventionVerdict struct {
	// ExistingCorrect is true when the existing-contour group's dominant
	// line style matches the expected convention (or the group is empty).
	ExistingCorrect    bool    `json:"existing_correct"`
	ExistingConfidence float64 `json:"existing_confidence"`

	ProposedCorrect    bool    `json:"proposed_correct"`
	ProposedConfidence float64 `json:"proposed_confidence"`

	// FilteredLineCount is the number of segments that survived spatial
	// association; TotalLineCount the number extracted before it.
	FilteredLineCount int `json:"filtered_line_count"`
	TotalLineCount    int `json:"total_line_count"`

	// FallbackUsed is true when association ran without any labels and
	// retained everything. Verdict confidence is unreliable in that case.
	FallbackUsed bool `json:"fallback_used"`
}

// VerifyConventions checks the existing=dashed / proposed=solid drafting
// convention over spatially filtered segments.
//
// Segments are partitioned by the role of their nearest label, as
// annotated by Associate. For each group the dominant classification is
// compared against the expected style; confidence is the mean of the
// group's per-segment confidences counting only segments that agree with
// the dominant style.
//
// An empty group is trivially correct with zero confidence: the absence
// of a line style is not something the classifier can flag, and the
// checklist stage reports missing contour annotation separately.
func VerifyConventions(filtered []LineSegment, totalCount int, existingShouldBeDashed bool, fallbackUsed bool) ConventionVerdict {
	var existing, proposed []LineSegment
	for _, seg := range filtered {
		switch seg.NearestLabelRole {
		case RoleExisting:
			existing = append(existing, seg)
		case RoleProposed:
			proposed = append(proposed, seg)
		}
	}

	expectedExisting := Dashed
	expectedProposed := Solid
	if !existingShouldBeDashed {
		expectedExisting = Solid
		expectedProposed = Dashed
	}

	existingCorrect, existingConf := groupVerdict(existing, expectedExisting)
	proposedCorrect, proposedConf := groupVerdict(proposed, expectedProposed)

	return ConventionVerdict{
		ExistingCorrect:    existingCorrect,
		ExistingConfidence: existingConf,
		ProposedCorrect:    proposedCorrect,
		ProposedConfidence: proposedConf,
		FilteredLineCount:  len(filtered),
		TotalLineCount:     totalCount,
		FallbackUsed:       fallbackUsed,
	}
}

// groupVerdict finds the dominant classification in a group and compares
// it to the expected style.
func groupVerdict(group []LineSegment, expected Classification) (correct bool, confidence float64) {
	if len(group) == 0 {
		return true, 0
	}

	counts := map[Classification]int{}
	for _, seg := range group {
		counts[seg.Classification]++
	}

	dominant := Unknown
	best := 0
	// Fixed iteration order keeps ties deterministic
	for _, c := range []Classification{Solid, Dashed, Unknown} {
		if counts[c] > best {
			best = counts[c]
			dominant = c
		}
	}

	var confSum float64
	for _, seg := range group {
		if seg.Classification == dominant {
			confSum += seg.Confidence
		}
	}

	return dominant == expected, confSum / float64(len(group))
}
