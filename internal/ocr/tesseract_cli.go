package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// tesseractCLIEngine shells out to the tesseract binary and parses its
// TSV output. Works anywhere the binary is installed, no CGO required.
type tesseractCLIEngine struct {
	binary string
}

func newTesseractCLIEngine() (Engine, error) {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("tesseract binary not found in PATH: %w", err)
	}
	return &tesseractCLIEngine{binary: path}, nil
}

func (e *tesseractCLIEngine) Name() string { return BackendTesseractCLI }

func (e *tesseractCLIEngine) Recognize(ctx context.Context, img image.Image) ([]TextDetection, error) {
	path, err := saveTempPNG(img)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	cmd := exec.CommandContext(ctx, e.binary, path, "stdout", "-l", "eng", "tsv")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseTSV(out.String()), nil
}

func (e *tesseractCLIEngine) Close() error { return nil }

// tsvLevelWord marks word rows in Tesseract's TSV output.
const tsvLevelWord = "5"

// parseTSV extracts word detections from Tesseract TSV output.
//
// Columns: level page_num block_num par_num line_num word_num
// left top width height conf text. Only word-level rows (level 5) carry
// recognized text; structural rows have conf -1 and are skipped.
func parseTSV(tsv string) []TextDetection {
	var dets []TextDetection

	lines := strings.Split(tsv, "\n")
	for i, line := range lines {
		if i == 0 || line == "" {
			// Header or trailing blank
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 12 || fields[0] != tsvLevelWord {
			continue
		}

		left, err1 := strconv.Atoi(fields[6])
		top, err2 := strconv.Atoi(fields[7])
		width, err3 := strconv.Atoi(fields[8])
		height, err4 := strconv.Atoi(fields[9])
		conf, err5 := strconv.ParseFloat(fields[10], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}

		text := strings.TrimSpace(fields[11])
		if text == "" || conf < 0 {
			continue
		}

		dets = append(dets, TextDetection{
			Text:       text,
			Confidence: conf,
			X1:         left,
			Y1:         top,
			X2:         left + width,
			Y2:         top + height,
		})
	}
	return dets
}
