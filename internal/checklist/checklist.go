// Package checklist detects the regulatory required elements of an
// erosion and sediment control sheet from OCR output.
//
// Each required element is described by a keyword list. Detection scans
// the sheet's recognized text for exact substring matches first, then
// falls back to fuzzy matching so routine OCR mangling ("SILT FENGE")
// still counts. Elements with minimum quantities (one construction
// entrance, one washout) are additionally counted.
package checklist

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mkellner/escval/internal/ocr"
)

// Element identifiers. Keys into RequiredElements, MinQuantities, and
// DisplayNames.
const (
	ElementLegend           = "legend"
	ElementScale            = "scale"
	ElementNorthBar         = "north_bar"
	ElementLOC              = "loc"
	ElementSiltFence        = "silt_fence"
	ElementSCE              = "sce"
	ElementConcWash         = "conc_wash"
	ElementStaging          = "staging"
	ElementExistingContours = "existing_contours"
	ElementProposedContours = "proposed_contours"
	ElementStreets          = "streets"
	ElementLotBlock         = "lot_block"
)

// RequiredElements maps each element to the keywords that evidence it.
// Multi-word keywords match against the sheet text with OCR words joined
// in reading order.
var RequiredElements = map[string][]string{
	ElementLegend:           {"legend"},
	ElementScale:            {"scale"},
	ElementNorthBar:         {"north"},
	ElementLOC:              {"limit of construction", "limits of construction", "loc"},
	ElementSiltFence:        {"silt fence", "super silt fence"},
	ElementSCE:              {"stabilized construction entrance", "construction entrance", "sce"},
	ElementConcWash:         {"concrete washout", "conc wash", "washout"},
	ElementStaging:          {"staging area", "staging"},
	ElementExistingContours: {"existing contour", "ex contour", "ex. contour"},
	ElementProposedContours: {"proposed contour", "prop contour", "prop. contour"},
	ElementStreets:          {"street", "road", "drive", "avenue", "court", "lane"},
	ElementLotBlock:         {"lot", "block"},
}

// MinQuantities lists elements that must appear a minimum number of
// times, not merely once.
var MinQuantities = map[string]int{
	ElementSCE:      1,
	ElementConcWash: 1,
}

// DisplayNames renders element keys for human-readable reports.
var DisplayNames = map[string]string{
	ElementLegend:           "Legend",
	ElementScale:            "Scale",
	ElementNorthBar:         "North Arrow",
	ElementLOC:              "Limits of Construction",
	ElementSiltFence:        "Silt Fence",
	ElementSCE:              "Stabilized Construction Entrance",
	ElementConcWash:         "Concrete Washout",
	ElementStaging:          "Staging Area",
	ElementExistingContours: "Existing Contours",
	ElementProposedContours: "Proposed Contours",
	ElementStreets:          "Street Labels",
	ElementLotBlock:         "Lot/Block Labels",
}

// ElementResult is the detection outcome for one required element.
type ElementResult struct {
	Found bool `json:"found"`

	// Count is the number of keyword occurrences, used for quantity
	// checks.
	Count int `json:"count"`

	// Confidence is 0-1: 0.9 base for an exact match, 0.7 for a fuzzy
	// match, with a small per-occurrence bonus capped at 0.95.
	Confidence float64 `json:"confidence"`

	// Matches holds the matched text samples, at most three.
	Matches []string `json:"matches,omitempty"`
}

// Options controls fuzzy matching.
type Options struct {
	// FuzzyThreshold is the minimum similarity ratio (0-1) for a fuzzy
	// keyword match.
	FuzzyThreshold float64
}

// countThreshold is the stricter similarity bar for counting repeat
// occurrences; looser matching would inflate quantity checks.
const countThreshold = 0.85

const maxMatchSamples = 3

// Detect scans OCR output for every required element.
func Detect(dets []ocr.TextDetection, opts Options) map[string]ElementResult {
	words := make([]string, 0, len(dets))
	for _, d := range dets {
		words = append(words, strings.ToLower(d.Text))
	}
	sheetText := strings.Join(words, " ")

	results := make(map[string]ElementResult, len(RequiredElements))
	for element, keywords := range RequiredElements {
		results[element] = detectElement(sheetText, words, keywords, opts)
	}
	return results
}

// detectElement checks one element's keywords against the sheet text.
func detectElement(sheetText string, words, keywords []string, opts Options) ElementResult {
	var res ElementResult

	for _, kw := range keywords {
		count := strings.Count(sheetText, kw)
		if count > 0 {
			res.Found = true
			res.Count += count
			if res.Confidence < 0.9 {
				res.Confidence = 0.9
			}
			if len(res.Matches) < maxMatchSamples {
				res.Matches = append(res.Matches, kw)
			}
			continue
		}

		// Fuzzy pass over word windows of the keyword's width
		match, n := fuzzyCount(words, kw, opts.FuzzyThreshold)
		if n > 0 {
			res.Found = true
			res.Count += n
			if res.Confidence < 0.7 {
				res.Confidence = 0.7
			}
			if len(res.Matches) < maxMatchSamples {
				res.Matches = append(res.Matches, match)
			}
		}
	}

	if res.Found {
		bonus := res.Confidence + float64(res.Count)*0.01
		if bonus > 0.95 {
			bonus = 0.95
		}
		// The bonus never demotes the base confidence
		if bonus > res.Confidence {
			res.Confidence = bonus
		}
	}
	return res
}

// fuzzyCount slides a window of the keyword's word-length across the
// sheet words and counts windows whose similarity clears the threshold.
// Returns the first matching window text and the count at the stricter
// counting bar.
func fuzzyCount(words []string, keyword string, threshold float64) (first string, count int) {
	kwWords := strings.Fields(keyword)
	window := len(kwWords)
	if window == 0 || len(words) < window {
		return "", 0
	}

	for i := 0; i+window <= len(words); i++ {
		candidate := strings.Join(words[i:i+window], " ")
		sim := Similarity(candidate, keyword)
		if sim < threshold {
			continue
		}
		if first == "" {
			first = candidate
		}
		if sim >= countThreshold {
			count++
		}
	}
	if first != "" && count == 0 {
		count = 1
	}
	return first, count
}

// Similarity is the Levenshtein similarity ratio between two strings:
// 1 - distance/maxLength, so 1.0 is identical and 0.0 fully dissimilar.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Summary aggregates per-element results into the sheet verdict.
type Summary struct {
	Total    int     `json:"total"`
	Found    int     `json:"found"`
	PassRate float64 `json:"pass_rate"`

	// Missing lists element keys not found, sorted.
	Missing []string `json:"missing,omitempty"`

	// QuantityFailures lists elements found but below their minimum
	// count, sorted.
	QuantityFailures []string `json:"quantity_failures,omitempty"`
}

// Summarize computes the aggregate verdict over Detect's output.
func Summarize(results map[string]ElementResult) Summary {
	s := Summary{Total: len(results)}
	for element, res := range results {
		if !res.Found {
			s.Missing = append(s.Missing, element)
			continue
		}
		s.Found++
		if min, ok := MinQuantities[element]; ok && res.Count < min {
			s.QuantityFailures = append(s.QuantityFailures, element)
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Found) / float64(s.Total)
	}
	sort.Strings(s.Missing)
	sort.Strings(s.QuantityFailures)
	return s
}
