package detection

import (
	"image"
	"math"

	"github.com/rs/zerolog"

	"github.com/ironsheep/loot-detect-mcp/internal/config"
	"github.com/ironsheep/loot-detect-mcp/internal/imaging"
)

// Score is the similarity between one slot and one template.
type Score struct {
	Structural float64 `json:"structural"`
	Color      float64 `json:"color"`
	Combined   float64 `json:"combined"`
}

// Match is the best-scoring template for a slot.
type Match struct {
	Template string `json:"template"`
	Index    int    `json:"index"` // position in the library
	Score    Score  `json:"score"`
}

// MarshalZerologObject logs the template name and its three scores.
func (m Match) MarshalZerologObject(e *zerolog.Event) {
	e.Str("template", m.Template).
		Float64("structural", m.Score.Structural).
		Float64("color", m.Score.Color).
		Float64("combined", m.Score.Combined)
}

// Matcher scores canonical slot images against a template library.
//
// Both sides are reduced to their glyph region (the top two thirds of the
// canonical square) before comparison, which keeps the stack-count digits
// printed at the bottom of a slot out of the score.
type Matcher struct {
	params config.Matching
	size   int
}

// NewMatcher creates a Matcher for images of size x size.
func NewMatcher(params config.Matching, size int) *Matcher {
	return &Matcher{params: params, size: size}
}

// GlyphRows returns the number of rows compared, floor(size*2/3).
func (m *Matcher) GlyphRows() int {
	return m.size * 2 / 3
}

// prepared is a glyph region with the planes the scorers need.
type prepared struct {
	width, height int
	smooth        *image.NRGBA
	channels      [3][]float64 // smoothed R, G, B in row-major order
	hues          []float64    // unsmoothed hue, half-degree units
}

// preparedTemplate adds the template mask to its prepared glyph.
type preparedTemplate struct {
	name    string
	glyph   prepared
	weights []float64   // mask/255, row-major
	opacity []uint8     // raw mask values, row-major
	mask    *image.Gray // glyph rows of the mask
}

// PreparedLibrary is a library whose glyph planes have been computed for a
// particular Matcher. It is read-only and can be shared between goroutines.
type PreparedLibrary struct {
	templates []preparedTemplate
}

// Len returns the number of templates.
func (p *PreparedLibrary) Len() int {
	if p == nil {
		return 0
	}
	return len(p.templates)
}

// Prepare computes the glyph planes of every template in lib.
func (m *Matcher) Prepare(lib *Library) *PreparedLibrary {
	out := &PreparedLibrary{templates: make([]preparedTemplate, 0, lib.Len())}
	rows := m.GlyphRows()
	for _, t := range lib.Templates {
		mask := imaging.TopRowsGray(t.Mask, rows)
		b := mask.Bounds()
		weights := make([]float64, 0, b.Dx()*b.Dy())
		opacity := make([]uint8, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				v := mask.GrayAt(x, y).Y
				weights = append(weights, float64(v)/255)
				opacity = append(opacity, v)
			}
		}
		out.templates = append(out.templates, preparedTemplate{
			name:    t.Name,
			glyph:   m.prepare(imaging.TopRows(t.Color, rows)),
			weights: weights,
			opacity: opacity,
			mask:    mask,
		})
	}
	return out
}

func (m *Matcher) prepare(glyph *image.NRGBA) prepared {
	b := glyph.Bounds()
	smooth := imaging.Smooth(glyph, m.params.BlurSize, m.params.BlurSigma)
	samples := imaging.Samples(smooth)

	p := prepared{width: b.Dx(), height: b.Dy(), smooth: smooth, hues: imaging.HuePlane(glyph)}
	n := b.Dx() * b.Dy()
	for c := range p.channels {
		p.channels[c] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		p.channels[0][i] = samples[i*3]
		p.channels[1][i] = samples[i*3+1]
		p.channels[2][i] = samples[i*3+2]
	}
	return p
}

// IsFlat reports whether a canonical slot image is too uniform to hold an
// icon, along with its pixel variance.
func (m *Matcher) IsFlat(slot *image.NRGBA) (bool, float64) {
	v := imaging.Variance(slot)
	return v < m.params.FlatnessThreshold, v
}

// Best returns the highest-scoring template for a canonical slot image.
// The first template wins ties. ok is false for an empty library.
func (m *Matcher) Best(slot *image.NRGBA, lib *PreparedLibrary) (match Match, ok bool) {
	if lib.Len() == 0 {
		return Match{}, false
	}

	glyph := m.prepare(imaging.TopRows(slot, m.GlyphRows()))
	for i := range lib.templates {
		score := m.compare(&glyph, &lib.templates[i])
		if !ok || score.Combined > match.Score.Combined {
			match = Match{Template: lib.templates[i].name, Index: i, Score: score}
			ok = true
		}
	}
	return match, ok
}

// compare scores one slot glyph against one template.
func (m *Matcher) compare(slot *prepared, tpl *preparedTemplate) Score {
	structural, offset := structuralScore(slot, tpl)
	color := m.colorScore(slot, tpl, offset)
	return Score{
		Structural: structural,
		Color:      color,
		Combined:   m.params.StructuralWeight*structural + m.params.ColorWeight*color,
	}
}

// colorScore compares hues over the template's opaque pixels, with the
// template placed at offset inside the slot glyph.
//
// The absolute hue differences are averaged first and the mean is then
// folded onto the hue circle, d = min(mean, 180-mean), which maps to
// 1-d/90. A mix of identical and near-wrapped pixels therefore scores
// low. When no template pixel passes the opacity threshold the score is
// a neutral 0.5.
func (m *Matcher) colorScore(slot *prepared, tpl *preparedTemplate, offset image.Point) float64 {
	var sum float64
	var n int
	for y := 0; y < tpl.glyph.height; y++ {
		sy := y + offset.Y
		if sy >= slot.height {
			break
		}
		for x := 0; x < tpl.glyph.width; x++ {
			sx := x + offset.X
			if sx >= slot.width {
				break
			}
			i := y*tpl.glyph.width + x
			if tpl.opacity[i] <= m.params.MaskOpacityThreshold {
				continue
			}
			sum += math.Abs(slot.hues[sy*slot.width+sx] - tpl.glyph.hues[i])
			n++
		}
	}
	if n == 0 {
		return 0.5
	}
	d := imaging.HueDistance(sum/float64(n), 0)
	return 1 - math.Min(d/(imaging.HuePeriod/2), 1)
}
