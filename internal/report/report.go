// Package report defines the structured validation record and its
// human-readable renderings.
//
// The Report struct is the single source of truth: JSON output
// serializes it directly, and the markdown and text renderers are pure
// formatting layers over the same record.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkellner/escval/internal/checklist"
	"github.com/mkellner/escval/internal/detection"
	"github.com/mkellner/escval/internal/quality"
)

// Status is the overall sheet verdict derived from the checklist pass
// rate.
type Status string

const (
	StatusPass       Status = "PASS"
	StatusAcceptable Status = "ACCEPTABLE"
	StatusFail       Status = "FAIL"
)

// Pass-rate tiers for the overall status.
const (
	passRateGood       = 0.9
	passRateAcceptable = 0.7
)

// lowConfidenceFloor marks checklist results needing manual review.
const lowConfidenceFloor = 0.7

// StageError records a pipeline stage that failed on this page. The page
// still reports whatever the other stages produced.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Timings holds per-stage wall-clock durations in milliseconds.
type Timings struct {
	RenderMS    int64 `json:"render_ms"`
	OCRMS       int64 `json:"ocr_ms"`
	ChecklistMS int64 `json:"checklist_ms"`
	LinesMS     int64 `json:"lines_ms"`
	QualityMS   int64 `json:"quality_ms"`
	TotalMS     int64 `json:"total_ms"`
}

// Report is the structured result of validating one sheet.
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Page        int       `json:"page"`
	DPI         int       `json:"dpi"`
	OCREngine   string    `json:"ocr_engine,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Checklist        map[string]checklist.ElementResult `json:"checklist,omitempty"`
	ChecklistSummary checklist.Summary                  `json:"checklist_summary"`

	// Convention is nil when line detection was disabled.
	Convention *detection.ConventionVerdict `json:"convention,omitempty"`

	// Overlaps and Proximity are nil when quality checks were disabled.
	Overlaps  []quality.OverlapIssue   `json:"overlaps,omitempty"`
	Proximity []quality.ProximityIssue `json:"proximity,omitempty"`

	Timings     Timings      `json:"timings"`
	StageErrors []StageError `json:"stage_errors,omitempty"`
}

// New creates a report shell for one source page.
func New(source string, page, dpi int) *Report {
	return &Report{
		RunID:       uuid.New().String(),
		Source:      source,
		Page:        page,
		DPI:         dpi,
		GeneratedAt: time.Now().UTC(),
	}
}

// Status derives the overall verdict from the checklist pass rate.
func (r *Report) Status() Status {
	switch {
	case r.ChecklistSummary.PassRate >= passRateGood:
		return StatusPass
	case r.ChecklistSummary.PassRate >= passRateAcceptable:
		return StatusAcceptable
	default:
		return StatusFail
	}
}

// CriticalFailures lists the findings a reviewer must address: missing
// required elements, quantity shortfalls, critical overlaps, critical
// proximity violations, and convention violations.
func (r *Report) CriticalFailures() []string {
	var out []string
	for _, element := range r.ChecklistSummary.Missing {
		out = append(out, "missing required element: "+displayName(element))
	}
	for _, element := range r.ChecklistSummary.QuantityFailures {
		out = append(out, "insufficient quantity: "+displayName(element))
	}
	for _, iss := range r.Overlaps {
		if iss.Severity == quality.SeverityCritical {
			out = append(out, "unreadable overlapping labels: "+iss.A.Text+" / "+iss.B.Text)
		}
	}
	for _, iss := range r.Proximity {
		if iss.Severity == quality.SeverityCritical {
			out = append(out, "label far from its feature: "+iss.Label.Text)
		}
	}
	if r.Convention != nil && !r.Convention.FallbackUsed {
		if !r.Convention.ExistingCorrect {
			out = append(out, "existing contours do not follow the drafting convention")
		}
		if !r.Convention.ProposedCorrect {
			out = append(out, "proposed contours do not follow the drafting convention")
		}
	}
	return out
}

// LowConfidenceElements lists found elements whose detection confidence
// warrants manual verification, sorted by element key.
func (r *Report) LowConfidenceElements() []string {
	var out []string
	for _, element := range sortedElementKeys(r.Checklist) {
		res := r.Checklist[element]
		if res.Found && res.Confidence < lowConfidenceFloor {
			out = append(out, element)
		}
	}
	return out
}

// sortedElementKeys gives the checklist map a stable rendering order.
func sortedElementKeys(results map[string]checklist.ElementResult) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func displayName(element string) string {
	if name, ok := checklist.DisplayNames[element]; ok {
		return name
	}
	return element
}
