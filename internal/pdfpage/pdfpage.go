// Package pdfpage locates and rasterizes the erosion control sheet
// inside a plan set PDF.
//
// Plan sets bundle many disciplines into one document; the ESC sheet is
// usually one page among dozens. FindSheet scores each page's extracted
// text against ESC vocabulary and picks the best candidate. Rendering
// goes through poppler's pdftoppm at a configurable DPI; page counting
// uses pdfcpu.
package pdfpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoSheetFound indicates no page scored as an ESC sheet.
var ErrNoSheetFound = errors.New("no erosion control sheet found")

// ErrPageOutOfRange indicates an explicit page override beyond the
// document.
var ErrPageOutOfRange = errors.New("page number out of range")

// PageCount returns the number of pages in the PDF.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// sheetKeywords score a page as a candidate ESC sheet. Weights reflect
// how specific each term is: "erosion" on a page is near-diagnostic,
// "plan" is on every title block.
var sheetKeywords = map[string]int{
	"erosion":      5,
	"sediment":     5,
	"silt fence":   4,
	"esc":          3,
	"stabilized":   2,
	"construction": 1,
	"control":      1,
	"plan":         1,
}

// confirmKeywords must appear on the winning page for it to be accepted.
// A grading sheet mentioning "silt fence" in a note is not the ESC sheet.
var confirmKeywords = []string{"erosion", "sediment"}

const minSheetScore = 6

// FindSheet locates the ESC sheet page (1-based) in a PDF.
//
// Each page's text is extracted with pdftotext and scored against ESC
// vocabulary; the best-scoring page wins if it clears the minimum score
// and mentions erosion or sediment control explicitly. Returns
// ErrNoSheetFound when no page qualifies.
func FindSheet(ctx context.Context, path string) (int, error) {
	count, err := PageCount(path)
	if err != nil {
		return 0, err
	}

	bestPage := 0
	bestScore := 0
	for page := 1; page <= count; page++ {
		text, err := extractPageText(ctx, path, page)
		if err != nil {
			// A single unextractable page should not sink the search
			continue
		}
		score := scoreSheetText(text)
		if score > bestScore {
			bestScore = score
			bestPage = page
		}
	}

	if bestPage == 0 || bestScore < minSheetScore {
		return 0, ErrNoSheetFound
	}

	text, err := extractPageText(ctx, path, bestPage)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm sheet page %d: %w", bestPage, err)
	}
	if !confirmsSheet(text) {
		return 0, ErrNoSheetFound
	}
	return bestPage, nil
}

// scoreSheetText sums keyword weights over lowercase page text.
func scoreSheetText(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for kw, weight := range sheetKeywords {
		if strings.Contains(lower, kw) {
			score += weight
		}
	}
	return score
}

// confirmsSheet requires explicit erosion/sediment vocabulary.
func confirmsSheet(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range confirmKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractPageText runs pdftotext for a single page.
func extractPageText(ctx context.Context, path string, page int) (string, error) {
	p := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, "pdftotext", "-f", p, "-l", p, path, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

// Render rasterizes one page of a PDF to a PNG in outDir and returns the
// written path.
//
// Page numbers are 1-based; ErrPageOutOfRange is returned for overrides
// beyond the document. The output file is <pdf-stem>-p<page>.png.
func Render(ctx context.Context, path string, page, dpi int, outDir string) (string, error) {
	count, err := PageCount(path)
	if err != nil {
		return "", err
	}
	if page < 1 || page > count {
		return "", fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, count)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPrefix := filepath.Join(outDir, fmt.Sprintf("%s-p%d", stem, page))

	p := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", p,
		"-l", p,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		path,
		outPrefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	outPath := outPrefix + ".png"
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("pdftoppm produced no output: %w", err)
	}
	return outPath, nil
}
