package report

import (
	"fmt"
	"strings"
)

// RenderText formats a report as compact plain text for terminal output.
func RenderText(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s page %d  [%s]  %.0f%% elements found\n",
		r.Status(), r.Source, r.Page, r.RunID[:8], r.ChecklistSummary.PassRate*100)

	for _, element := range sortedElementKeys(r.Checklist) {
		res := r.Checklist[element]
		mark := "MISS"
		if res.Found {
			mark = "ok  "
		}
		fmt.Fprintf(&b, "  %s %-34s count=%d conf=%.2f\n", mark, displayName(element), res.Count, res.Confidence)
	}

	if r.Convention != nil {
		v := r.Convention
		fmt.Fprintf(&b, "  conventions: existing=%s proposed=%s (%d/%d lines", yesNo(v.ExistingCorrect),
			yesNo(v.ProposedCorrect), v.FilteredLineCount, v.TotalLineCount)
		if v.FallbackUsed {
			b.WriteString(", no labels: unfiltered")
		}
		b.WriteString(")\n")
	}

	for _, iss := range r.Overlaps {
		fmt.Fprintf(&b, "  overlap [%s] %q / %q %.1f%%\n", iss.Severity, iss.A.Text, iss.B.Text, iss.OverlapPercent)
	}
	for _, iss := range r.Proximity {
		fmt.Fprintf(&b, "  proximity [%s] %q %.0fpx > %.0fpx\n", iss.Severity, iss.Label.Text, iss.Distance, iss.Threshold)
	}
	for _, se := range r.StageErrors {
		fmt.Fprintf(&b, "  stage error: %s: %s\n", se.Stage, se.Message)
	}

	fmt.Fprintf(&b, "  %dms total\n", r.Timings.TotalMS)
	return b.String()
}
