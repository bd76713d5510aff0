// Package config holds the tunable parameters of the loot detector.
//
// The loot GUI layout, matching weights and thresholds were all tuned
// empirically against one screen resolution, so every one of them is a
// field here rather than a constant in the detector. A Config is built from
// Default() and optionally overlaid with a YAML file via Load.
package config

import (
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"
)

// Rect is a pixel rectangle with an inclusive top-left and exclusive
// bottom-right corner.
type Rect struct {
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
	X2 int `yaml:"x2"`
	Y2 int `yaml:"y2"`
}

// Rectangle converts r to an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Layout describes where the loot GUI sits in a screenshot and how it is
// divided into slots.
type Layout struct {
	Crop          Rect `yaml:"crop"`
	Rows          int  `yaml:"rows"`
	Cols          int  `yaml:"cols"`
	ColumnGap     int  `yaml:"column_gap"`
	RowGap        int  `yaml:"row_gap"`
	InnerSize     int  `yaml:"inner_size"`     // side of the centered sampling box
	CanonicalSize int  `yaml:"canonical_size"` // side of templates and resized slots
	SlotLimit     int  `yaml:"slot_limit"`     // 0 scans every cell
	MinWidth      int  `yaml:"min_width"`
	MinHeight     int  `yaml:"min_height"`
}

// SlotCount returns the number of slots that will be scanned.
func (l Layout) SlotCount() int {
	n := l.Rows * l.Cols
	if l.SlotLimit > 0 && l.SlotLimit < n {
		return l.SlotLimit
	}
	return n
}

// Matching holds the scoring parameters of the per-slot matcher.
type Matching struct {
	Threshold            float64 `yaml:"threshold"`
	StructuralWeight     float64 `yaml:"structural_weight"`
	ColorWeight          float64 `yaml:"color_weight"`
	FlatnessThreshold    float64 `yaml:"flatness_threshold"`
	MaskOpacityThreshold uint8   `yaml:"mask_opacity_threshold"`
	BlurSize             int     `yaml:"blur_size"`
	BlurSigma            float64 `yaml:"blur_sigma"`
}

// Templates configures where icon templates come from.
type Templates struct {
	Dir   string `yaml:"dir"`
	Cache bool   `yaml:"cache"`
}

// Debug configures the offline debug images. None of it affects detections.
type Debug struct {
	Enabled        bool   `yaml:"enabled"`
	CropDir        string `yaml:"crop_dir"`
	AnnotatedDir   string `yaml:"annotated_dir"`
	SlotOverlayDir string `yaml:"slot_overlay_dir"`
}

// OCR configures optional stack-count reading.
type OCR struct {
	StackCounts bool   `yaml:"stack_counts"`
	Language    string `yaml:"language"`
}

// Batch configures concurrent multi-screenshot detection.
type Batch struct {
	Workers int `yaml:"workers"` // 0 picks the physical core count
}

// Scoring configures the point-award collaborator.
type Scoring struct {
	LootTable       string  `yaml:"loot_table"`
	RecordsDir      string  `yaml:"records_dir"`
	AlwaysFullValue float64 `yaml:"always_full_value"`
	MaxPPEs         int     `yaml:"max_ppes"`
}

// Config is the complete configuration.
type Config struct {
	Layout    Layout    `yaml:"layout"`
	Matching  Matching  `yaml:"matching"`
	Templates Templates `yaml:"templates"`
	Debug     Debug     `yaml:"debug"`
	OCR       OCR       `yaml:"ocr"`
	Batch     Batch     `yaml:"batch"`
	Scoring   Scoring   `yaml:"scoring"`
}

// Default returns the configuration tuned for a 1920x1080 client with the
// loot bag open in the bottom-right corner.
func Default() Config {
	return Config{
		Layout: Layout{
			Crop:          Rect{X1: 1575, Y1: 908, X2: 1905, Y2: 1072},
			Rows:          2,
			Cols:          4,
			ColumnGap:     1,
			RowGap:        0,
			InnerSize:     70,
			CanonicalSize: 40,
			SlotLimit:     4,
			MinWidth:      1900,
			MinHeight:     1070,
		},
		Matching: Matching{
			Threshold:            0.85,
			StructuralWeight:     0.9,
			ColorWeight:          0.1,
			FlatnessThreshold:    5,
			MaskOpacityThreshold: 10,
			BlurSize:             3,
			BlurSigma:            0.6,
		},
		Templates: Templates{
			Dir: "./sprites",
		},
		Debug: Debug{
			CropDir:        "./cropped",
			AnnotatedDir:   "./debug",
			SlotOverlayDir: "./debug_slots",
		},
		OCR: OCR{
			Language: "eng",
		},
		Scoring: Scoring{
			LootTable:       "./rotmg_loot_drops_updated.csv",
			RecordsDir:      "./data",
			AlwaysFullValue: 1,
			MaxPPEs:         10,
		},
	}
}

// Load reads a YAML file and overlays it on Default(). Fields missing from
// the file keep their default values. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration describes a usable slot grid and
// a well-formed scoring function.
func (c Config) Validate() error {
	l := c.Layout
	crop := l.Crop.Rectangle()
	if crop.Empty() || l.Crop.X1 < 0 || l.Crop.Y1 < 0 {
		return fmt.Errorf("invalid crop region (%d,%d)-(%d,%d)", l.Crop.X1, l.Crop.Y1, l.Crop.X2, l.Crop.Y2)
	}
	if l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("grid must have at least one row and column, got %dx%d", l.Rows, l.Cols)
	}
	if l.ColumnGap < 0 || l.RowGap < 0 {
		return fmt.Errorf("slot gaps must not be negative")
	}
	if l.SlotLimit < 0 {
		return fmt.Errorf("slot_limit must not be negative, got %d", l.SlotLimit)
	}
	if l.CanonicalSize < 3 {
		return fmt.Errorf("canonical_size must be at least 3, got %d", l.CanonicalSize)
	}
	cellW := crop.Dx() / l.Cols
	cellH := crop.Dy() / l.Rows
	if l.InnerSize <= 0 || l.InnerSize > cellW || l.InnerSize > cellH {
		return fmt.Errorf("inner_size %d does not fit in %dx%d cells", l.InnerSize, cellW, cellH)
	}

	m := c.Matching
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %g", m.Threshold)
	}
	if m.StructuralWeight < 0 || m.ColorWeight < 0 {
		return fmt.Errorf("score weights must not be negative")
	}
	if sum := m.StructuralWeight + m.ColorWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("score weights must sum to 1, got %g", sum)
	}
	if m.BlurSize < 1 || m.BlurSize%2 == 0 {
		return fmt.Errorf("blur_size must be a positive odd number, got %d", m.BlurSize)
	}
	if m.BlurSigma <= 0 {
		return fmt.Errorf("blur_sigma must be positive, got %g", m.BlurSigma)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch workers must not be negative, got %d", c.Batch.Workers)
	}
	return nil
}
