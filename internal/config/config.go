// Package config holds the tunable parameters of the validation pipeline.
//
// Every threshold in the detection heuristics lives here rather than as a
// literal at its point of use. Most were calibrated against 300 DPI scans
// of one municipality's plan sets; they are starting points, not
// universal constants, and each documents its calibration context.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ReferenceDPI is the resolution the pixel-space defaults were tuned at.
// Pixel thresholds scale linearly when pages are rendered at another DPI.
const ReferenceDPI = 300

// Config is the full pipeline configuration.
type Config struct {
	// DPI is the rasterization resolution for PDF pages.
	DPI int `mapstructure:"dpi"`

	// OCRBackend selects the preferred OCR engine ("gosseract" or
	// "tesseract-cli"). Empty means the default preference order.
	OCRBackend string `mapstructure:"ocr_backend"`

	Edge      EdgeConfig      `mapstructure:"edge"`
	Lines     LineConfig      `mapstructure:"lines"`
	Labels    LabelConfig     `mapstructure:"labels"`
	Quality   QualityConfig   `mapstructure:"quality"`
	Checklist ChecklistConfig `mapstructure:"checklist"`
}

// EdgeConfig controls Canny edge detection.
type EdgeConfig struct {
	// ThresholdLow/ThresholdHigh are the hysteresis gradient thresholds
	// (0-255). 50/150 suit clean plan scans.
	ThresholdLow  int `mapstructure:"threshold_low"`
	ThresholdHigh int `mapstructure:"threshold_high"`
}

// LineConfig controls segment extraction and classification.
type LineConfig struct {
	// MinLength is the shortest segment kept, in pixels at ReferenceDPI.
	// High on purpose: civil features (contours, streets) are long, and a
	// high floor rejects text strokes and hatching.
	MinLength int `mapstructure:"min_length"`

	// MaxGap is the largest break bridged while tracing a line, so dashed
	// or occluded strokes are not fragmented.
	MaxGap int `mapstructure:"max_gap"`

	// SampleCount is the number of evenly spaced points sampled per
	// segment for solid/dashed classification.
	SampleCount int `mapstructure:"sample_count"`

	// SolidCoverage is the minimum on-edge fraction for a solid verdict.
	SolidCoverage float64 `mapstructure:"solid_coverage"`

	// DashedCoverageMin is the minimum on-edge fraction for a dashed
	// verdict; below it the segment is mostly absent from the edge map.
	DashedCoverageMin float64 `mapstructure:"dashed_coverage_min"`

	// DashedTransitions is the minimum on/off transition count for a
	// dashed verdict.
	DashedTransitions int `mapstructure:"dashed_transitions"`

	// ExistingDashed states the drafting convention under verification:
	// existing grade dashed, proposed grade solid. Some jurisdictions
	// invert it.
	ExistingDashed bool `mapstructure:"existing_dashed"`
}

// LabelConfig controls contour label recognition and spatial association.
type LabelConfig struct {
	// ElevationMin/ElevationMax bound plausible elevation values in feet.
	// Regional calibration: 50-500 fits the piedmont sites the defaults
	// were tuned on, not coastal or mountain work.
	ElevationMin float64 `mapstructure:"elevation_min"`
	ElevationMax float64 `mapstructure:"elevation_max"`

	// MaxDistance is the furthest a segment midpoint may sit from its
	// nearest contour label and still count as a contour, in pixels at
	// ReferenceDPI.
	MaxDistance float64 `mapstructure:"max_distance"`

	// MinConfidence drops OCR detections below this score (0-100) before
	// any label reasoning.
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// QualityConfig controls the overlapping-text checker and proximity rules.
type QualityConfig struct {
	// MinOverlapPercent drops pair overlaps below this percentage;
	// adjacent-but-touching text is noise, not a defect.
	MinOverlapPercent float64 `mapstructure:"min_overlap_percent"`

	// LowConfidenceFloor: pairs where both detections score below this
	// are skipped as probable OCR noise.
	LowConfidenceFloor float64 `mapstructure:"low_confidence_floor"`

	// SkipSingleChars skips pairs where both texts are single characters.
	SkipSingleChars bool `mapstructure:"skip_single_chars"`

	// SkipDuplicateText skips pairs with identical text, which are almost
	// always the same word detected twice.
	SkipDuplicateText bool `mapstructure:"skip_duplicate_text"`
}

// ChecklistConfig controls required-element detection.
type ChecklistConfig struct {
	// FuzzyThreshold is the minimum Levenshtein similarity ratio for a
	// fuzzy keyword match (0-1).
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`
}

// setDefaults registers every default with viper under the escval prefix.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dpi", ReferenceDPI)
	v.SetDefault("ocr_backend", "")

	v.SetDefault("edge.threshold_low", 50)
	v.SetDefault("edge.threshold_high", 150)

	v.SetDefault("lines.min_length", 500)
	v.SetDefault("lines.max_gap", 100)
	v.SetDefault("lines.sample_count", 20)
	v.SetDefault("lines.solid_coverage", 0.8)
	v.SetDefault("lines.dashed_coverage_min", 0.3)
	v.SetDefault("lines.dashed_transitions", 4)
	v.SetDefault("lines.existing_dashed", true)

	v.SetDefault("labels.elevation_min", 50)
	v.SetDefault("labels.elevation_max", 500)
	v.SetDefault("labels.max_distance", 150)
	v.SetDefault("labels.min_confidence", 40)

	v.SetDefault("quality.min_overlap_percent", 5)
	v.SetDefault("quality.low_confidence_floor", 40)
	v.SetDefault("quality.skip_single_chars", true)
	v.SetDefault("quality.skip_duplicate_text", true)

	v.SetDefault("checklist.fuzzy_threshold", 0.8)
}

// Load reads configuration from defaults, an optional YAML file, and
// ESCVAL_* environment variables, in increasing precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ESCVAL")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("escval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.escval")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always unmarshal cleanly
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Edge.ThresholdLow >= c.Edge.ThresholdHigh {
		return fmt.Errorf("edge.threshold_low (%d) must be below edge.threshold_high (%d)",
			c.Edge.ThresholdLow, c.Edge.ThresholdHigh)
	}
	if c.Lines.SampleCount < 2 {
		return fmt.Errorf("lines.sample_count must be at least 2, got %d", c.Lines.SampleCount)
	}
	if c.Labels.ElevationMin >= c.Labels.ElevationMax {
		return fmt.Errorf("labels.elevation_min (%v) must be below labels.elevation_max (%v)",
			c.Labels.ElevationMin, c.Labels.ElevationMax)
	}
	if c.Labels.MaxDistance <= 0 {
		return fmt.Errorf("labels.max_distance must be positive, got %v", c.Labels.MaxDistance)
	}
	if c.Checklist.FuzzyThreshold < 0 || c.Checklist.FuzzyThreshold > 1 {
		return fmt.Errorf("checklist.fuzzy_threshold must be in [0,1], got %v", c.Checklist.FuzzyThreshold)
	}
	return nil
}

// ScaleForDPI returns the pixel-space thresholds scaled from ReferenceDPI
// to the configured DPI. Ratio 1 returns the values unchanged.
func (c *Config) ScaleForDPI() (minLineLength, maxGap int, maxLabelDistance float64) {
	ratio := float64(c.DPI) / float64(ReferenceDPI)
	minLineLength = int(float64(c.Lines.MinLength) * ratio)
	maxGap = int(float64(c.Lines.MaxGap) * ratio)
	maxLabelDistance = c.Labels.MaxDistance * ratio
	return
}
