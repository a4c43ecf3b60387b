package detection

import (
	"math"
	"testing"
)

func classifiedSegment(role Role, cls Classification, conf float64) LineSegment {
	return LineSegment{
		X1: 0, Y1: 0, X2: 100, Y2: 0,
		Classification:       cls,
		Confidence:           conf,
		NearestLabelDistance: 40,
		NearestLabelRole:     role,
	}
}

func TestVerifyConventions_CorrectSheet(t *testing.T) {
	filtered := []LineSegment{
		classifiedSegment(RoleExisting, Dashed, 0.9),
		classifiedSegment(RoleExisting, Dashed, 0.8),
		classifiedSegment(RoleProposed, Solid, 1.0),
	}

	verdict := VerifyConventions(filtered, 10, true, false)

	if !verdict.ExistingCorrect {
		t.Error("dashed existing contours should satisfy the convention")
	}
	if !verdict.ProposedCorrect {
		t.Error("solid proposed contours should satisfy the convention")
	}
	if math.Abs(verdict.ExistingConfidence-0.85) > 1e-9 {
		t.Errorf("existing confidence: got %v, want 0.85", verdict.ExistingConfidence)
	}
	if verdict.FilteredLineCount != 3 || verdict.TotalLineCount != 10 {
		t.Errorf("counts: got %d/%d, want 3/10", verdict.FilteredLineCount, verdict.TotalLineCount)
	}
	if verdict.FallbackUsed {
		t.Error("fallback flag should pass through as false")
	}
}

func TestVerifyConventions_ViolatedConvention(t *testing.T) {
	// Existing contours drawn solid violate the default convention
	filtered := []LineSegment{
		classifiedSegment(RoleExisting, Solid, 0.9),
		classifiedSegment(RoleExisting, Solid, 0.7),
		classifiedSegment(RoleExisting, Dashed, 0.8),
	}

	verdict := VerifyConventions(filtered, 3, true, false)

	if verdict.ExistingCorrect {
		t.Error("dominant solid style should violate existing=dashed")
	}
	// Confidence counts only segments agreeing with the dominant style
	if math.Abs(verdict.ExistingConfidence-(0.9+0.7)/3) > 1e-9 {
		t.Errorf("existing confidence: got %v, want %v", verdict.ExistingConfidence, (0.9+0.7)/3)
	}
}

func TestVerifyConventions_InvertedConvention(t *testing.T) {
	filtered := []LineSegment{
		classifiedSegment(RoleExisting, Solid, 0.9),
		classifiedSegment(RoleProposed, Dashed, 0.9),
	}

	verdict := VerifyConventions(filtered, 2, false, false)

	if !verdict.ExistingCorrect || !verdict.ProposedCorrect {
		t.Error("inverted jurisdictions flip the expected styles")
	}
}

func TestVerifyConventions_EmptyGroups(t *testing.T) {
	verdict := VerifyConventions(nil, 0, true, false)

	if !verdict.ExistingCorrect || !verdict.ProposedCorrect {
		t.Error("empty groups are trivially correct")
	}
	if verdict.ExistingConfidence != 0 || verdict.ProposedConfidence != 0 {
		t.Error("empty groups carry zero confidence")
	}
}

func TestVerifyConventions_UnspecifiedRolesIgnored(t *testing.T) {
	filtered := []LineSegment{
		classifiedSegment(RoleUnspecified, Solid, 0.9),
		classifiedSegment(RoleUnspecified, Dashed, 0.9),
	}

	verdict := VerifyConventions(filtered, 2, true, false)

	if !verdict.ExistingCorrect || verdict.ExistingConfidence != 0 {
		t.Error("unspecified-role segments must not feed either group")
	}
	if verdict.FilteredLineCount != 2 {
		t.Errorf("filtered count: got %d, want 2", verdict.FilteredLineCount)
	}
}

func TestVerifyConventions_FallbackFlagPropagates(t *testing.T) {
	verdict := VerifyConventions(nil, 57, true, true)

	if !verdict.FallbackUsed {
		t.Error("fallback flag must propagate into the verdict")
	}
	if verdict.TotalLineCount != 57 {
		t.Errorf("total count: got %d, want 57", verdict.TotalLineCount)
	}
}
