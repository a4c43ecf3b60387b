package report

import (
	"fmt"
	"strings"
)

// RenderMarkdown formats a report for human review.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# ESC Sheet Validation Report\n\n")
	fmt.Fprintf(&b, "**Status: %s** (%.0f%% of required elements found)\n\n", r.Status(), r.ChecklistSummary.PassRate*100)
	fmt.Fprintf(&b, "- Source: `%s` (page %d, %d DPI)\n", r.Source, r.Page, r.DPI)
	if r.OCREngine != "" {
		fmt.Fprintf(&b, "- OCR engine: %s\n", r.OCREngine)
	}
	fmt.Fprintf(&b, "- Run: %s at %s\n\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	if failures := r.CriticalFailures(); len(failures) > 0 {
		b.WriteString("## Critical Findings\n\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "- ❌ %s\n", f)
		}
		b.WriteString("\n")
	}

	if len(r.Checklist) > 0 {
		b.WriteString("## Required Elements\n\n")
		b.WriteString("| Element | Found | Count | Confidence |\n")
		b.WriteString("|---------|-------|-------|------------|\n")
		for _, element := range sortedElementKeys(r.Checklist) {
			res := r.Checklist[element]
			mark := "❌"
			if res.Found {
				mark = "✅"
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %.2f |\n", displayName(element), mark, res.Count, res.Confidence)
		}
		b.WriteString("\n")
	}

	if r.Convention != nil {
		b.WriteString("## Contour Conventions\n\n")
		v := r.Convention
		if v.FallbackUsed {
			b.WriteString("> No contour labels were found; all detected lines were retained " +
				"without spatial filtering. Treat the verdict below as low confidence.\n\n")
		}
		fmt.Fprintf(&b, "- Existing contours dashed: %s (confidence %.2f)\n", yesNo(v.ExistingCorrect), v.ExistingConfidence)
		fmt.Fprintf(&b, "- Proposed contours solid: %s (confidence %.2f)\n", yesNo(v.ProposedCorrect), v.ProposedConfidence)
		fmt.Fprintf(&b, "- Lines analyzed: %d of %d detected\n\n", v.FilteredLineCount, v.TotalLineCount)
	}

	if r.Overlaps != nil || r.Proximity != nil {
		b.WriteString("## Label Quality\n\n")
		if len(r.Overlaps) == 0 && len(r.Proximity) == 0 {
			b.WriteString("No label quality issues found.\n\n")
		}
		for _, iss := range r.Overlaps {
			fmt.Fprintf(&b, "- [%s] labels \"%s\" and \"%s\" overlap %.1f%%\n",
				iss.Severity, iss.A.Text, iss.B.Text, iss.OverlapPercent)
		}
		for _, iss := range r.Proximity {
			fmt.Fprintf(&b, "- [%s] label \"%s\" is %.0fpx from its %s (limit %.0fpx)\n",
				iss.Severity, iss.Label.Text, iss.Distance, iss.Feature, iss.Threshold)
		}
		if len(r.Overlaps) > 0 || len(r.Proximity) > 0 {
			b.WriteString("\n")
		}
	}

	if low := r.LowConfidenceElements(); len(low) > 0 {
		b.WriteString("## Manual Verification Suggested\n\n")
		b.WriteString("These elements were detected with low confidence:\n\n")
		for _, element := range low {
			fmt.Fprintf(&b, "- %s\n", displayName(element))
		}
		b.WriteString("\n")
	}

	if len(r.StageErrors) > 0 {
		b.WriteString("## Stage Errors\n\n")
		for _, se := range r.StageErrors {
			fmt.Fprintf(&b, "- %s: %s\n", se.Stage, se.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\nProcessed in %dms (OCR %dms, lines %dms)\n",
		r.Timings.TotalMS, r.Timings.OCRMS, r.Timings.LinesMS)

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
