package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellner/escval/internal/checklist"
	"github.com/mkellner/escval/internal/config"
	"github.com/mkellner/escval/internal/ocr"
)

type fakeEngine struct {
	dets []ocr.TextDetection
	err  error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, _ image.Image) ([]ocr.TextDetection, error) {
	return f.dets, f.err
}

func (f *fakeEngine) Close() error { return nil }

// writeSheetPNG writes a white page with one horizontal dark line.
func writeSheetPNG(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < 190; x++ {
		img.Set(x, 50, color.Black)
	}

	path := filepath.Join(dir, "sheet.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func word(text string, x, y int, conf float64) ocr.TextDetection {
	return ocr.TextDetection{Text: text, Confidence: conf, X1: x, Y1: y, X2: x + 60, Y2: y + 20}
}

func newValidator(engine ocr.Engine, opts Options) *Validator {
	return New(config.Default(), engine, nil, opts)
}

func TestValidateImage_ChecklistOnly(t *testing.T) {
	path := writeSheetPNG(t, t.TempDir())
	engine := &fakeEngine{dets: []ocr.TextDetection{
		word("LEGEND", 10, 10, 92),
		word("SILT", 10, 40, 88),
		word("FENCE", 80, 40, 88),
	}}
	v := newValidator(engine, Options{})

	rep, err := v.ValidateImage(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "fake", rep.OCREngine)
	assert.True(t, rep.Checklist[checklist.ElementLegend].Found)
	assert.True(t, rep.Checklist[checklist.ElementSiltFence].Found)
	assert.False(t, rep.Checklist[checklist.ElementScale].Found)
	assert.Nil(t, rep.Convention, "line detection was disabled")
	assert.Nil(t, rep.Overlaps, "quality checks were disabled")
	assert.Empty(t, rep.StageErrors)
}

func TestValidateImage_OCRFailureDegrades(t *testing.T) {
	path := writeSheetPNG(t, t.TempDir())
	engine := &fakeEngine{err: errors.New("tesseract exploded")}
	v := newValidator(engine, Options{})

	rep, err := v.ValidateImage(context.Background(), path)
	require.NoError(t, err, "OCR failure degrades the page, it does not abort it")

	require.Len(t, rep.StageErrors, 1)
	assert.Equal(t, "ocr", rep.StageErrors[0].Stage)
	assert.Equal(t, 0, rep.ChecklistSummary.Found)
}

func TestValidateImage_LowConfidenceFiltered(t *testing.T) {
	path := writeSheetPNG(t, t.TempDir())
	engine := &fakeEngine{dets: []ocr.TextDetection{
		word("LEGEND", 10, 10, 12),
	}}
	v := newValidator(engine, Options{})

	rep, err := v.ValidateImage(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, rep.Checklist[checklist.ElementLegend].Found,
		"confidence 12 sits below the 40 floor")
}

func TestValidateImage_QualityStage(t *testing.T) {
	path := writeSheetPNG(t, t.TempDir())
	engine := &fakeEngine{dets: []ocr.TextDetection{
		{Text: "102", Confidence: 90, X1: 10, Y1: 10, X2: 50, Y2: 30},
		{Text: "104", Confidence: 90, X1: 15, Y1: 12, X2: 55, Y2: 32},
	}}
	v := newValidator(engine, Options{EnableQualityChecks: true})

	rep, err := v.ValidateImage(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, rep.Overlaps, 1)
	assert.Equal(t, "102", rep.Overlaps[0].A.Text)
	assert.Empty(t, rep.Proximity, "no line stage ran, so nothing to measure against")
}

func TestValidateImage_LineStageFallback(t *testing.T) {
	path := writeSheetPNG(t, t.TempDir())
	engine := &fakeEngine{dets: []ocr.TextDetection{
		word("LEGEND", 10, 10, 92),
	}}
	v := newValidator(engine, Options{EnableLineDetection: true, EnableQualityChecks: true})

	rep, err := v.ValidateImage(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, rep.Convention)
	assert.True(t, rep.Convention.FallbackUsed,
		"no contour labels on the sheet, so the filter falls back")
	assert.Empty(t, rep.Proximity)
}

func TestValidateImage_MissingFile(t *testing.T) {
	v := newValidator(&fakeEngine{}, Options{})

	_, err := v.ValidateImage(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestRunBatch_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeSheetPNG(t, dir)
	bad := filepath.Join(dir, "missing.png")
	v := newValidator(&fakeEngine{}, Options{})

	reports, err := RunBatch(context.Background(), v, []string{bad, good}, 0)
	require.NoError(t, err, "one processed input keeps the batch successful")

	require.Len(t, reports, 2, "the failed input still gets a report entry")
	assert.Equal(t, bad, reports[0].Source)
	require.Len(t, reports[0].StageErrors, 1)
	assert.Equal(t, "input", reports[0].StageErrors[0].Stage)
	assert.Equal(t, good, reports[1].Source)
	assert.Empty(t, reports[1].StageErrors)
}

func TestRunBatch_AllFailed(t *testing.T) {
	dir := t.TempDir()
	v := newValidator(&fakeEngine{}, Options{})

	reports, err := RunBatch(context.Background(), v,
		[]string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, 0)
	assert.Error(t, err)
	assert.Len(t, reports, 2, "failure entries are returned even when the batch errors")
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := newValidator(&fakeEngine{}, Options{})

	reports, err := RunBatch(ctx, v, []string{"x.png"}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("plans/site.pdf"))
	assert.True(t, IsPDF("SITE.PDF"))
	assert.False(t, IsPDF("sheet.png"))
}
