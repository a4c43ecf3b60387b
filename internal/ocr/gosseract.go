//go:build cgo && linux

package ocr

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// gosseractEngine recognizes text through native Tesseract bindings.
//
// Available on Linux with CGO enabled; other builds use the CLI backend.
type gosseractEngine struct {
	client *gosseract.Client
}

func newGosseractEngine() (Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return &gosseractEngine{client: client}, nil
}

func (e *gosseractEngine) Name() string { return BackendGosseract }

func (e *gosseractEngine) Recognize(ctx context.Context, img image.Image) ([]TextDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := saveTempPNG(img)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	if err := e.client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	dets := make([]TextDetection, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		dets = append(dets, TextDetection{
			Text:       box.Word,
			Confidence: box.Confidence,
			X1:         box.Box.Min.X,
			Y1:         box.Box.Min.Y,
			X2:         box.Box.Max.X,
			Y2:         box.Box.Max.Y,
		})
	}
	return dets, nil
}

func (e *gosseractEngine) Close() error {
	return e.client.Close()
}
