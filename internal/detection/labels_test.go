package detection

import (
	"testing"

	"github.com/mkellner/escval/internal/ocr"
)

func labelOpts() LabelOptions {
	return LabelOptions{ElevationMin: 50, ElevationMax: 500}
}

func det(text string) ocr.TextDetection {
	return ocr.TextDetection{Text: text, Confidence: 90, X1: 0, Y1: 0, X2: 60, Y2: 20}
}

func TestFilterContourLabels_Keywords(t *testing.T) {
	dets := []ocr.TextDetection{
		det("EXISTING CONTOUR"),
		det("Proposed Grade"),
		det("ELEV 250"),
		det("SILT FENCE"),
		det("north"),
	}

	labels := FilterContourLabels(dets, labelOpts())

	if len(labels) != 3 {
		t.Fatalf("promoted %d labels, want 3: %+v", len(labels), labels)
	}
	if labels[0].Role != RoleExisting {
		t.Errorf("EXISTING CONTOUR role: got %s, want existing", labels[0].Role)
	}
	if labels[1].Role != RoleProposed {
		t.Errorf("Proposed Grade role: got %s, want proposed", labels[1].Role)
	}
	if labels[2].Role != RoleUnspecified {
		t.Errorf("ELEV 250 role: got %s, want unspecified", labels[2].Role)
	}
}

func TestFilterContourLabels_NumericElevation(t *testing.T) {
	dets := []ocr.TextDetection{
		det("102.5"),
		det("49.9"),   // below plausible range
		det("500.01"), // above plausible range
		det("250"),
		det("12ab"), // not a number
	}

	labels := FilterContourLabels(dets, labelOpts())

	if len(labels) != 2 {
		t.Fatalf("promoted %d labels, want 2: %+v", len(labels), labels)
	}
	for _, lab := range labels {
		if !lab.IsNumericElevation {
			t.Errorf("%q should be flagged as numeric elevation", lab.Text)
		}
		if lab.Role != RoleUnspecified {
			t.Errorf("%q role: got %s, want unspecified", lab.Text, lab.Role)
		}
	}
}

func TestFilterContourLabels_RangeIsConfigurable(t *testing.T) {
	dets := []ocr.TextDetection{det("1250")}

	if got := FilterContourLabels(dets, labelOpts()); len(got) != 0 {
		t.Fatalf("1250 should be rejected by the 50-500 default range")
	}

	mountain := LabelOptions{ElevationMin: 1000, ElevationMax: 3000}
	if got := FilterContourLabels(dets, mountain); len(got) != 1 {
		t.Fatalf("1250 should pass a 1000-3000 range")
	}
}

func TestFilterContourLabels_PermissiveSubstrings(t *testing.T) {
	// The lexical filter is deliberately permissive: "ex" matches inside
	// unrelated words. Spatial filtering absorbs this noise downstream,
	// so the behavior is pinned rather than fixed.
	dets := []ocr.TextDetection{det("EXAGGERATED")}

	labels := FilterContourLabels(dets, labelOpts())

	if len(labels) != 1 {
		t.Fatal("substring keyword match should promote EXAGGERATED")
	}
	if labels[0].IsNumericElevation {
		t.Error("keyword promotion should not flag numeric elevation")
	}
}

func TestFilterContourLabels_ExistingSynonyms(t *testing.T) {
	cases := []struct {
		text string
		want Role
	}{
		{"EX. 250", RoleExisting},
		{"exist grade", RoleExisting},
		{"PROP 102", RoleProposed},
		{"future contour", RoleProposed},
		{"contour", RoleUnspecified},
	}

	for _, tc := range cases {
		labels := FilterContourLabels([]ocr.TextDetection{det(tc.text)}, labelOpts())
		if len(labels) != 1 {
			t.Errorf("%q: expected promotion", tc.text)
			continue
		}
		if labels[0].Role != tc.want {
			t.Errorf("%q role: got %s, want %s", tc.text, labels[0].Role, tc.want)
		}
	}
}

func TestFilterContourLabels_Empty(t *testing.T) {
	if got := FilterContourLabels(nil, labelOpts()); len(got) != 0 {
		t.Errorf("nil input should yield no labels, got %d", len(got))
	}
}
