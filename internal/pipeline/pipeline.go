// Package pipeline orchestrates the validation of plan sheets.
//
// One Validator processes pages start to finish, single threaded: render,
// OCR (once, into the shared result cache), checklist detection, the line
// stage, and the quality stage. Every stage consumes immutable inputs and
// produces new collections; a stage failure is recorded on the report and
// the remaining stages still run, because a partial report is worth more
// to a reviewer than none.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkellner/escval/internal/checklist"
	"github.com/mkellner/escval/internal/config"
	"github.com/mkellner/escval/internal/detection"
	"github.com/mkellner/escval/internal/imaging"
	"github.com/mkellner/escval/internal/ocr"
	"github.com/mkellner/escval/internal/pdfpage"
	"github.com/mkellner/escval/internal/quality"
	"github.com/mkellner/escval/internal/report"
)

// Options configures a Validator beyond the threshold config.
type Options struct {
	// EnableLineDetection toggles the contour convention stage.
	EnableLineDetection bool

	// EnableQualityChecks toggles the overlap and proximity stage.
	EnableQualityChecks bool

	// SaveImages writes intermediate rasters (preprocessed pages, edge
	// maps) next to the rendered pages for inspection.
	SaveImages bool

	// WorkDir receives rendered pages and debug images. Empty means a
	// temporary directory per run.
	WorkDir string
}

// Validator runs the validation pipeline over pages.
type Validator struct {
	cfg    *config.Config
	engine ocr.Engine
	cache  *ocr.ResultCache
	pages  *imaging.PageCache
	log    *slog.Logger
	opts   Options
}

// New creates a Validator. The OCR engine is injected so callers control
// backend selection and tests can substitute a fake.
func New(cfg *config.Config, engine ocr.Engine, log *slog.Logger, opts Options) *Validator {
	if log == nil {
		log = slog.Default()
	}
	return &Validator{
		cfg:    cfg,
		engine: engine,
		cache:  ocr.NewResultCache(),
		pages:  imaging.NewPageCache(),
		log:    log,
		opts:   opts,
	}
}

// ValidatePDF locates the ESC sheet in a PDF (or uses pageOverride when
// positive), renders it, and validates the raster.
//
// Unreadable documents and out-of-range pages are hard failures for this
// input; the caller decides whether the batch continues.
func (v *Validator) ValidatePDF(ctx context.Context, path string, pageOverride int) (*report.Report, error) {
	start := time.Now()

	page := pageOverride
	if page <= 0 {
		found, err := pdfpage.FindSheet(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("sheet selection failed for %s: %w", path, err)
		}
		page = found
		v.log.Info("located sheet page", "source", filepath.Base(path), "page", page)
	}

	workDir := v.opts.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "escval-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(dir)
		workDir = dir
	}

	rasterPath, err := pdfpage.Render(ctx, path, page, v.cfg.DPI, workDir)
	if err != nil {
		return nil, fmt.Errorf("page rendering failed for %s: %w", path, err)
	}

	rep := report.New(path, page, v.cfg.DPI)
	rep.Timings.RenderMS = time.Since(start).Milliseconds()

	if err := v.validateRaster(ctx, rasterPath, rep); err != nil {
		return nil, err
	}
	rep.Timings.TotalMS = time.Since(start).Milliseconds()
	return rep, nil
}

// ValidateImage validates an already rasterized sheet image.
func (v *Validator) ValidateImage(ctx context.Context, path string) (*report.Report, error) {
	start := time.Now()
	rep := report.New(path, 1, v.cfg.DPI)
	if err := v.validateRaster(ctx, path, rep); err != nil {
		return nil, err
	}
	rep.Timings.TotalMS = time.Since(start).Milliseconds()
	return rep, nil
}

// validateRaster runs the per-page stages over one raster file.
func (v *Validator) validateRaster(ctx context.Context, rasterPath string, rep *report.Report) error {
	// The OCR cache must never outlive the page that populated it;
	// clearing in a defer covers every exit path.
	defer v.cache.Clear()
	defer v.pages.Evict(rasterPath)

	rep.OCREngine = v.engine.Name()

	img, err := v.pages.Load(rasterPath)
	if err != nil {
		return fmt.Errorf("unreadable page raster: %w", err)
	}

	dets := v.recognize(ctx, rasterPath, img, rep)

	v.runChecklist(dets, rep)

	var retained []detection.LineSegment
	if v.opts.EnableLineDetection {
		retained = v.runLineStage(img, dets, rep)
	}
	if v.opts.EnableQualityChecks {
		v.runQualityStage(retained, dets, rep)
	}
	return nil
}

// recognize performs the single OCR pass of the run and populates the
// result cache. OCR failure is a degraded signal: the page continues
// with zero detections.
func (v *Validator) recognize(ctx context.Context, key string, img image.Image, rep *report.Report) []ocr.TextDetection {
	if cached, ok := v.cache.Get(key); ok {
		return cached
	}

	start := time.Now()
	prepped := imaging.PreprocessForOCR(img)
	v.saveDebug(prepped, "ocr-input")

	dets, err := v.engine.Recognize(ctx, prepped)
	rep.Timings.OCRMS = time.Since(start).Milliseconds()
	if err != nil {
		v.log.Error("OCR failed, continuing without text", "error", err)
		rep.StageErrors = append(rep.StageErrors, report.StageError{Stage: "ocr", Message: err.Error()})
		dets = nil
	}

	dets = ocr.FilterDetections(dets, v.cfg.Labels.MinConfidence)
	v.log.Debug("OCR complete", "detections", len(dets))

	v.cache.Put(key, dets)
	return dets
}

func (v *Validator) runChecklist(dets []ocr.TextDetection, rep *report.Report) {
	start := time.Now()
	results := checklist.Detect(dets, checklist.Options{FuzzyThreshold: v.cfg.Checklist.FuzzyThreshold})
	rep.Checklist = results
	rep.ChecklistSummary = checklist.Summarize(results)
	rep.Timings.ChecklistMS = time.Since(start).Milliseconds()
}

// runLineStage extracts, classifies, and spatially filters line
// segments, then verifies the drafting convention. It returns the
// retained segments for the quality stage.
func (v *Validator) runLineStage(img image.Image, dets []ocr.TextDetection, rep *report.Report) []detection.LineSegment {
	start := time.Now()
	defer func() {
		rep.Timings.LinesMS = time.Since(start).Milliseconds()
	}()

	minLen, maxGap, maxDist := v.cfg.ScaleForDPI()

	prepped := imaging.PreprocessForLines(img)
	edges := imaging.EdgeDetect(prepped, v.cfg.Edge.ThresholdLow, v.cfg.Edge.ThresholdHigh)
	v.saveDebug(edges.ToGray(), "edges")

	segments := detection.ExtractAndClassify(edges,
		detection.ExtractOptions{MinLength: minLen, MaxGap: maxGap},
		detection.ClassifyOptions{
			SampleCount:       v.cfg.Lines.SampleCount,
			SolidCoverage:     v.cfg.Lines.SolidCoverage,
			DashedCoverageMin: v.cfg.Lines.DashedCoverageMin,
			DashedTransitions: v.cfg.Lines.DashedTransitions,
		})

	labels := detection.FilterContourLabels(dets, detection.LabelOptions{
		ElevationMin: v.cfg.Labels.ElevationMin,
		ElevationMax: v.cfg.Labels.ElevationMax,
	})

	filtered, fallback := detection.Associate(segments, labels, maxDist)
	if fallback {
		v.log.Warn("no contour labels found, retaining all segments unfiltered",
			"segments", len(segments))
	}

	v.sampleStrokes(img, filtered)

	verdict := detection.VerifyConventions(filtered, len(segments), v.cfg.Lines.ExistingDashed, fallback)
	rep.Convention = &verdict

	v.log.Debug("line stage complete",
		"extracted", len(segments), "filtered", len(filtered), "labels", len(labels))

	if fallback {
		// Unfiltered segments are too noisy to anchor proximity checks
		return nil
	}
	return filtered
}

// sampleStrokes annotates segments with the ink color at their midpoint.
// Sampling failures leave the field nil; color is advisory only. A high
// share of paper-colored midpoints usually means the Hough extraction
// picked up hatching or scan noise, so it is worth a log line.
func (v *Validator) sampleStrokes(img image.Image, segments []detection.LineSegment) {
	dark := 0
	for i := range segments {
		mx, my := segments[i].Midpoint()
		sample, err := imaging.SampleStroke(img, int(mx), int(my))
		if err != nil {
			continue
		}
		segments[i].Stroke = sample
		if sample.IsDarkInk() {
			dark++
		}
	}
	if len(segments) > 0 {
		v.log.Debug("stroke sampling", "segments", len(segments), "dark_ink", dark)
	}
}

// runQualityStage reads the cached OCR detections and reports label
// overlaps and contour label proximity violations.
func (v *Validator) runQualityStage(retained []detection.LineSegment, dets []ocr.TextDetection, rep *report.Report) {
	start := time.Now()

	rep.Overlaps = quality.FindOverlaps(dets, quality.OverlapOptions{
		MinOverlapPercent:  v.cfg.Quality.MinOverlapPercent,
		LowConfidenceFloor: v.cfg.Quality.LowConfidenceFloor,
		SkipSingleChars:    v.cfg.Quality.SkipSingleChars,
		SkipDuplicateText:  v.cfg.Quality.SkipDuplicateText,
	})

	rep.Proximity = v.checkContourProximity(retained, dets)
	rep.Timings.QualityMS = time.Since(start).Milliseconds()
}

// checkContourProximity validates contour label placement against the
// segments the line stage retained. Each label is paired with the
// nearest retained segment midpoint; without a usable line stage there
// is nothing to measure against.
func (v *Validator) checkContourProximity(segments []detection.LineSegment, dets []ocr.TextDetection) []quality.ProximityIssue {
	if len(segments) == 0 {
		return nil
	}

	labels := detection.FilterContourLabels(dets, detection.LabelOptions{
		ElevationMin: v.cfg.Labels.ElevationMin,
		ElevationMax: v.cfg.Labels.ElevationMax,
	})
	if len(labels) == 0 {
		return nil
	}

	placements := make([]quality.LabelPlacement, 0, len(labels))
	for _, lab := range labels {
		bestX, bestY := segments[0].Midpoint()
		cx, cy := lab.Center()
		best := (bestX-cx)*(bestX-cx) + (bestY-cy)*(bestY-cy)
		for _, seg := range segments[1:] {
			mx, my := seg.Midpoint()
			d := (mx-cx)*(mx-cx) + (my-cy)*(my-cy)
			if d < best {
				best, bestX, bestY = d, mx, my
			}
		}
		placements = append(placements, quality.LabelPlacement{
			Label:    lab.TextDetection,
			Feature:  quality.FeatureContour,
			FeatureX: bestX,
			FeatureY: bestY,
		})
	}

	dpiRatio := float64(v.cfg.DPI) / float64(config.ReferenceDPI)
	return quality.CheckProximity(placements, nil, dpiRatio)
}

func (v *Validator) saveDebug(img image.Image, name string) {
	if !v.opts.SaveImages || v.opts.WorkDir == "" {
		return
	}
	if _, err := imaging.SaveDebugImage(img, v.opts.WorkDir, name); err != nil {
		v.log.Warn("failed to save debug image", "name", name, "error", err)
	}
}

// IsPDF reports whether a path looks like a PDF input.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// RunBatch validates every input, continuing past per-file failures.
//
// A failed input is never silently omitted: it contributes a report
// entry carrying only the stage error, so batch output accounts for
// every input. The returned error is non-nil only when not a single
// input could be processed, which is the condition the CLI maps to a
// non-zero exit code. Reports are returned alongside that error so the
// failure entries still reach the output.
func RunBatch(ctx context.Context, v *Validator, inputs []string, pageOverride int) ([]*report.Report, error) {
	reports := make([]*report.Report, 0, len(inputs))
	processed := 0

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		var rep *report.Report
		var err error
		if IsPDF(input) {
			rep, err = v.ValidatePDF(ctx, input, pageOverride)
		} else {
			rep, err = v.ValidateImage(ctx, input)
		}
		if err != nil {
			v.log.Error("validation failed", "input", input, "error", err)
			failed := report.New(input, pageOverride, v.cfg.DPI)
			failed.StageErrors = append(failed.StageErrors, report.StageError{
				Stage:   "input",
				Message: err.Error(),
			})
			reports = append(reports, failed)
			continue
		}
		processed++
		reports = append(reports, rep)
	}

	if processed == 0 && len(inputs) > 0 {
		return reports, fmt.Errorf("no input could be processed")
	}
	return reports, nil
}
