package detection

import (
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/loot-detect-mcp/internal/config"
	"github.com/ironsheep/loot-detect-mcp/internal/imaging"
)

// Detection is one recognized item in a loot slot.
type Detection struct {
	// Slot is the 1-based slot number.
	Slot int `json:"slot"`

	// Item is the display name of the best-matching template.
	Item string `json:"item"`

	// Confidence is the combined score, always >= the threshold used.
	Confidence float64 `json:"confidence"`

	// Count is the stack size read from the slot, when stack-count reading
	// is enabled and a number was found.
	Count int `json:"count,omitempty"`
}

// SlotReport describes how one slot was evaluated, including slots that
// produced no detection.
type SlotReport struct {
	Slot     Slot    `json:"slot"`
	Variance float64 `json:"variance"`
	Empty    bool    `json:"empty"`
	Best     *Match  `json:"best,omitempty"`
	Detected bool    `json:"detected"`
}

// Result holds the detections for one screenshot and the intermediate data
// behind them.
type Result struct {
	Detections []Detection  `json:"detections"`
	Slots      []SlotReport `json:"slots"`
	Crop       *image.NRGBA `json:"-"`
	CropOrigin image.Point  `json:"-"`
}

// StackReader reads the stack count printed in a slot.
type StackReader interface {
	ReadStackCount(img image.Image) (int, error)
}

// Detector recognizes loot icons in screenshots.
//
// A Detector holds no per-call state and is safe for concurrent use.
type Detector struct {
	cfg     config.Config
	matcher *Matcher
	cache   *LibraryCache
	stacks  StackReader
	log     zerolog.Logger

	debugMu sync.Mutex // serializes debug image writes
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Detector) { d.log = l }
}

// WithLibraryCache shares a template cache between detectors.
func WithLibraryCache(c *LibraryCache) Option {
	return func(d *Detector) { d.cache = c }
}

// WithStackReader enables stack-count reading for detected slots.
func WithStackReader(r StackReader) Option {
	return func(d *Detector) { d.stacks = r }
}

// New creates a Detector. When cfg.Templates.Cache is set and no cache is
// supplied, the detector gets its own.
func New(cfg config.Config, opts ...Option) *Detector {
	d := &Detector{
		cfg:     cfg,
		matcher: NewMatcher(cfg.Matching, cfg.Layout.CanonicalSize),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cache == nil && cfg.Templates.Cache {
		d.cache = NewLibraryCache()
	}
	return d
}

// Config returns the detector configuration.
func (d *Detector) Config() config.Config {
	return d.cfg
}

// Library loads the template library for dir, through the cache when one
// is configured. An empty dir selects the configured default.
func (d *Detector) Library(dir string) (*Library, error) {
	if dir == "" {
		dir = d.cfg.Templates.Dir
	}
	if d.cache != nil {
		return d.cache.Get(dir, d.cfg.Layout.CanonicalSize, d.log)
	}
	return LoadLibrary(dir, d.cfg.Layout.CanonicalSize, d.log)
}

// Detect recognizes the items in the loot GUI of the screenshot at
// screenshotPath, comparing against the templates in templateDir.
//
// Detect never fails. An unreadable screenshot, a missing template
// directory or a screenshot too small for the layout are logged and yield
// an empty list. The result is ordered by slot and holds at most one entry
// per slot; every entry has Confidence >= threshold.
//
// When debug output is enabled the crop, the annotated crop and the slot
// overlay are written as a side effect.
func (d *Detector) Detect(screenshotPath, templateDir string, threshold float64) []Detection {
	res, err := d.DetectFile(screenshotPath, templateDir, threshold)
	if err != nil {
		d.log.Warn().Err(err).Str("screenshot", screenshotPath).Msg("detection produced no results")
		return []Detection{}
	}
	return res.Detections
}

// DetectFile is Detect with the full result and the error that Detect
// swallows.
func (d *Detector) DetectFile(screenshotPath, templateDir string, threshold float64) (*Result, error) {
	img, err := imaging.Load(screenshotPath)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", screenshotPath, err)
	}

	lib, err := d.Library(templateDir)
	if err != nil {
		return nil, err
	}

	res, err := d.detect(img, d.matcher.Prepare(lib), threshold)
	if err != nil {
		return nil, err
	}
	d.log.Info().
		Str("screenshot", screenshotPath).
		Int("templates", lib.Len()).
		Int("detections", len(res.Detections)).
		Msg("screenshot scanned")

	if d.cfg.Debug.Enabled {
		d.writeDebug(screenshotPath, res)
	}
	return res, nil
}

// DetectImage runs detection on an already decoded screenshot.
func (d *Detector) DetectImage(img image.Image, lib *Library, threshold float64) (*Result, error) {
	return d.detect(img, d.matcher.Prepare(lib), threshold)
}

func (d *Detector) detect(img image.Image, lib *PreparedLibrary, threshold float64) (*Result, error) {
	slots, err := ComputeSlots(img.Bounds(), d.cfg.Layout)
	if err != nil {
		return nil, err
	}

	cropRect := CropRect(img.Bounds(), d.cfg.Layout)
	crop, err := imaging.Crop(img, cropRect)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Detections: []Detection{},
		Slots:      make([]SlotReport, 0, len(slots)),
		Crop:       crop,
		CropOrigin: cropRect.Min,
	}
	if lib.Len() == 0 {
		d.log.Warn().Msg("template library is empty")
	}

	for _, slot := range slots {
		report, det := d.scanSlot(img, slot, lib, threshold)
		res.Slots = append(res.Slots, report)
		if det != nil {
			res.Detections = append(res.Detections, *det)
		}
	}
	return res, nil
}

func (d *Detector) scanSlot(img image.Image, slot Slot, lib *PreparedLibrary, threshold float64) (SlotReport, *Detection) {
	report := SlotReport{Slot: slot}

	sample, err := imaging.Crop(img, slot.Sample)
	if err != nil {
		d.log.Debug().Err(err).Int("slot", slot.Index).Msg("slot outside screenshot")
		report.Empty = true
		return report, nil
	}
	canonical := imaging.Canonicalize(sample, d.cfg.Layout.CanonicalSize)

	flat, variance := d.matcher.IsFlat(canonical)
	report.Variance = variance
	if flat {
		report.Empty = true
		d.log.Debug().Int("slot", slot.Index).Float64("variance", variance).Msg("empty slot")
		return report, nil
	}

	match, ok := d.matcher.Best(canonical, lib)
	if !ok {
		return report, nil
	}
	report.Best = &match

	d.log.Debug().Int("slot", slot.Index).Object("best", match).Msg("slot scored")

	if match.Score.Combined < threshold {
		return report, nil
	}
	report.Detected = true

	det := &Detection{Slot: slot.Index, Item: match.Template, Confidence: match.Score.Combined}
	if d.stacks != nil {
		det.Count = d.readStackCount(img, slot)
	}
	return report, det
}

// readStackCount OCRs the bottom third of a slot cell, where the game
// prints stack sizes. Failures are logged and read as no count.
func (d *Detector) readStackCount(img image.Image, slot Slot) int {
	cell := slot.Cell
	region := image.Rect(cell.Min.X, cell.Max.Y-cell.Dy()/3, cell.Max.X, cell.Max.Y)
	part, err := imaging.Crop(img, region)
	if err != nil {
		return 0
	}

	n, err := d.stacks.ReadStackCount(imaging.Upscale(part, 3))
	if err != nil {
		d.log.Debug().Err(err).Int("slot", slot.Index).Msg("no stack count")
		return 0
	}
	return n
}
