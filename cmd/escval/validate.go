package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkellner/escval/internal/config"
	"github.com/mkellner/escval/internal/ocr"
	"github.com/mkellner/escval/internal/pipeline"
	"github.com/mkellner/escval/internal/report"
)

var (
	outputPath    string
	outputDir     string
	outputFormat  string
	pageNumber    int
	dpiFlag       int
	ocrEngineFlag string
	saveImages    bool
	enableLines   bool
	enableQuality bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <plan.pdf|sheet.png> [more inputs...]",
	Short: "Validate one or more plan sheets",
	Long: `Validate runs the full pipeline over each input. PDF inputs have their
ESC sheet located automatically unless --page pins one; image inputs are
validated as-is.

Inputs that fail are logged and skipped. The exit code is non-zero only
when no input could be processed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
	f.StringVar(&outputDir, "output-dir", "", "write one report per input into this directory")
	f.StringVar(&outputFormat, "format", "markdown", "report format: markdown, text, or json")
	f.IntVarP(&pageNumber, "page", "p", 0, "validate this PDF page instead of auto-locating the ESC sheet")
	f.IntVar(&dpiFlag, "dpi", 0, "rasterization DPI (overrides config)")
	f.StringVar(&ocrEngineFlag, "ocr-engine", "", "preferred OCR engine: gosseract or tesseract-cli")
	f.BoolVar(&saveImages, "save-images", false, "save intermediate images for inspection")
	f.BoolVar(&enableLines, "enable-line-detection", true, "run the contour convention stage")
	f.BoolVar(&enableQuality, "enable-quality-checks", true, "run the label quality stage")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := slog.Default()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if dpiFlag > 0 {
		cfg.DPI = dpiFlag
	}
	if ocrEngineFlag != "" {
		cfg.OCRBackend = ocrEngineFlag
	}

	if outputFormat != "markdown" && outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("unknown format %q: want markdown, text, or json", outputFormat)
	}

	engine, err := ocr.NewEngine(cfg.OCRBackend, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	workDir := ""
	if saveImages {
		workDir = outputDir
		if workDir == "" {
			workDir = "."
		}
	}

	v := pipeline.New(cfg, engine, log, pipeline.Options{
		EnableLineDetection: enableLines,
		EnableQualityChecks: enableQuality,
		SaveImages:          saveImages,
		WorkDir:             workDir,
	})

	reports, batchErr := pipeline.RunBatch(cmd.Context(), v, args, pageNumber)
	for _, rep := range reports {
		if err := emit(rep); err != nil {
			return err
		}
	}
	return batchErr
}

// emit writes one report to the selected destination.
func emit(rep *report.Report) error {
	rendered, err := render(rep)
	if err != nil {
		return err
	}

	switch {
	case outputDir != "":
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(outputDir, reportFileName(rep))
		return os.WriteFile(path, []byte(rendered), 0o644)
	case outputPath != "":
		return os.WriteFile(outputPath, []byte(rendered), 0o644)
	default:
		_, err := fmt.Print(rendered)
		return err
	}
}

func render(rep *report.Report) (string, error) {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		return string(data) + "\n", nil
	case "text":
		return report.RenderText(rep), nil
	default:
		return report.RenderMarkdown(rep), nil
	}
}

// reportFileName derives a per-input file name for --output-dir runs.
func reportFileName(rep *report.Report) string {
	stem := strings.TrimSuffix(filepath.Base(rep.Source), filepath.Ext(rep.Source))
	ext := map[string]string{"json": "json", "text": "txt"}[outputFormat]
	if ext == "" {
		ext = "md"
	}
	return fmt.Sprintf("%s-p%d.%s", stem, rep.Page, ext)
}
