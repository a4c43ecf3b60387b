package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
)

// ErrNoBackend indicates that no OCR backend could be initialized.
var ErrNoBackend = errors.New("no OCR backend available")

// Engine recognizes text in a raster image.
//
// Implementations must be safe to call sequentially; they are not required
// to support concurrent Recognize calls.
type Engine interface {
	// Name identifies the backend ("gosseract" or "tesseract-cli").
	Name() string

	// Recognize extracts word-level detections from an image.
	// A page with no text returns an empty slice, not an error.
	Recognize(ctx context.Context, img image.Image) ([]TextDetection, error)

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by NewEngine.
const (
	BackendGosseract    = "gosseract"
	BackendTesseractCLI = "tesseract-cli"
)

// NewEngine initializes an OCR engine, preferring the named backend and
// falling back to the alternate when initialization fails.
//
// The fallback is deliberate recovery, not an error path: a missing
// native library or binary downgrades the run to the other backend with a
// warning log, and only the failure of both backends is surfaced to the
// caller.
func NewEngine(preferred string, log *slog.Logger) (Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	order := []string{BackendGosseract, BackendTesseractCLI}
	if preferred == BackendTesseractCLI {
		order = []string{BackendTesseractCLI, BackendGosseract}
	} else if preferred != "" && preferred != BackendGosseract {
		return nil, fmt.Errorf("unknown OCR backend %q", preferred)
	}

	var initErrs []error
	for _, name := range order {
		eng, err := newBackend(name)
		if err != nil {
			log.Warn("OCR backend unavailable, trying fallback", "backend", name, "error", err)
			initErrs = append(initErrs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if name != order[0] {
			log.Warn("using fallback OCR backend", "backend", name)
		}
		return eng, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoBackend, errors.Join(initErrs...))
}

func newBackend(name string) (Engine, error) {
	switch name {
	case BackendGosseract:
		return newGosseractEngine()
	case BackendTesseractCLI:
		return newTesseractCLIEngine()
	default:
		return nil, fmt.Errorf("unknown OCR backend %q", name)
	}
}

// saveTempPNG writes an image to a temporary PNG file. Both backends hand
// Tesseract a file path rather than streaming pixels.
//
// The caller removes the file after use.
func saveTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "escval-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
