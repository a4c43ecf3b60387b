package detection

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mkellner/escval/internal/ocr"
)

// labelAt creates a contour label whose box is centered on (cx, cy)
func labelAt(cx, cy int, role Role) ContourLabel {
	return ContourLabel{
		TextDetection: ocr.TextDetection{
			Text: "250", Confidence: 90,
			X1: cx - 20, Y1: cy - 10, X2: cx + 20, Y2: cy + 10,
		},
		Role: role,
	}
}

// segmentAt creates a horizontal segment whose midpoint is (mx, my)
func segmentAt(mx, my int) LineSegment {
	return LineSegment{
		X1: mx - 50, Y1: my, X2: mx + 50, Y2: my,
		Classification:       Dashed,
		Confidence:           0.9,
		NearestLabelDistance: -1,
		NearestLabelRole:     RoleUnspecified,
	}
}

func TestAssociate_KeepsNearbySegments(t *testing.T) {
	segments := []LineSegment{
		segmentAt(100, 100), // 50px from label
		segmentAt(100, 400), // 250px away
	}
	labels := []ContourLabel{labelAt(100, 150, RoleExisting)}

	kept, fallback := Associate(segments, labels, 150)

	if fallback {
		t.Fatal("fallback must not trigger with labels present")
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d segments, want 1", len(kept))
	}
	if math.Abs(kept[0].NearestLabelDistance-50) > 1e-9 {
		t.Errorf("nearest distance: got %v, want 50", kept[0].NearestLabelDistance)
	}
	if kept[0].NearestLabelRole != RoleExisting {
		t.Errorf("nearest role: got %s, want existing", kept[0].NearestLabelRole)
	}
}

func TestAssociate_EmptyLabelsFallback(t *testing.T) {
	// The single most important regression guard in the pipeline: with
	// no labels the engine must retain everything and raise the flag,
	// not silently drop every segment.
	segments := make([]LineSegment, 50)
	for i := range segments {
		segments[i] = segmentAt(100+i*10, 200)
	}

	kept, fallback := Associate(segments, nil, 150)

	if !fallback {
		t.Fatal("fallback flag must be set when labels are empty")
	}
	if len(kept) != 50 {
		t.Fatalf("fallback must retain all 50 segments, got %d", len(kept))
	}
}

func TestAssociate_DoesNotMutateInput(t *testing.T) {
	segments := []LineSegment{segmentAt(100, 100)}
	labels := []ContourLabel{labelAt(100, 150, RoleProposed)}

	_, _ = Associate(segments, labels, 150)

	if segments[0].NearestLabelDistance != -1 || segments[0].NearestLabelRole != RoleUnspecified {
		t.Error("input segments must not be mutated")
	}
}

func TestAssociate_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	segments := make([]LineSegment, 40)
	for i := range segments {
		segments[i] = segmentAt(rng.Intn(2000), rng.Intn(2000))
	}
	labels := make([]ContourLabel, 9)
	for i := range labels {
		labels[i] = labelAt(rng.Intn(2000), rng.Intn(2000), RoleExisting)
	}

	kept, _ := Associate(segments, labels, 300)

	shuffled := make([]ContourLabel, len(labels))
	copy(shuffled, labels)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	keptShuffled, _ := Associate(segments, shuffled, 300)

	if len(kept) != len(keptShuffled) {
		t.Fatalf("kept counts differ under label permutation: %d vs %d", len(kept), len(keptShuffled))
	}
	for i := range kept {
		if kept[i].X1 != keptShuffled[i].X1 || kept[i].Y1 != keptShuffled[i].Y1 ||
			math.Abs(kept[i].NearestLabelDistance-keptShuffled[i].NearestLabelDistance) > 1e-9 {
			t.Errorf("segment %d differs under label permutation", i)
		}
	}
}

func TestAssociate_Idempotent(t *testing.T) {
	segments := []LineSegment{
		segmentAt(100, 100),
		segmentAt(120, 140),
		segmentAt(900, 900),
	}
	labels := []ContourLabel{labelAt(110, 120, RoleExisting)}

	once, _ := Associate(segments, labels, 150)
	twice, _ := Associate(once, labels, 150)

	if len(once) != len(twice) {
		t.Fatalf("filtering not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("segment %d changed on second pass: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestAssociate_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	segments := make([]LineSegment, 857)
	for i := range segments {
		segments[i] = segmentAt(rng.Intn(7000), rng.Intn(10000))
	}
	labels := make([]ContourLabel, 9)
	for i := range labels {
		labels[i] = labelAt(rng.Intn(7000), rng.Intn(10000), RoleUnspecified)
	}
	const maxDist = 150.0

	kept, fallback := Associate(segments, labels, maxDist)
	if fallback {
		t.Fatal("fallback must not trigger")
	}

	// Brute-force reference over the same data
	want := 0
	for _, seg := range segments {
		mx, my := seg.Midpoint()
		best := math.Inf(1)
		for _, lab := range labels {
			cx, cy := lab.Center()
			if d := math.Hypot(mx-cx, my-cy); d < best {
				best = d
			}
		}
		if best <= maxDist {
			want++
		}
	}

	if len(kept) != want {
		t.Errorf("kept %d segments, brute force says %d", len(kept), want)
	}
	for _, seg := range kept {
		if seg.NearestLabelDistance > maxDist {
			t.Errorf("kept segment with distance %v beyond threshold", seg.NearestLabelDistance)
		}
	}
}
