//go:build !gocv

package detection

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// structuralScore returns the maximum masked normalized cross-correlation
// of the template over every placement inside the slot glyph, clamped to
// [0,1], and the placement that produced it.
//
// At each placement the score is the weighted Pearson correlation of the
// two smoothed images, with the template mask as weights and the three
// color channels pooled. A placement with no variance on either side
// scores 0.
func structuralScore(slot *prepared, tpl *preparedTemplate) (float64, image.Point) {
	tw, th := tpl.glyph.width, tpl.glyph.height
	if tw > slot.width || th > slot.height || tw == 0 || th == 0 {
		return 0, image.Point{}
	}

	sumW := floats.Sum(tpl.weights)
	if sumW == 0 {
		return 0, image.Point{}
	}

	// Mask-weighted, mean-centered template channels and their energy.
	var centered [3][]float64
	var energyT float64
	for c := range centered {
		t := tpl.glyph.channels[c]
		mean := floats.Dot(tpl.weights, t) / sumW
		centered[c] = make([]float64, len(t))
		copy(centered[c], t)
		floats.AddConst(-mean, centered[c])
		energyT += weightedSquares(tpl.weights, centered[c])
		floats.Mul(centered[c], tpl.weights)
	}

	window := make([]float64, tw*th)
	best, bestAt := 0.0, image.Point{}
	for dy := 0; dy+th <= slot.height; dy++ {
		for dx := 0; dx+tw <= slot.width; dx++ {
			var num, energyI float64
			for c := range centered {
				extractWindow(window, slot.channels[c], slot.width, dx, dy, tw, th)
				mean := floats.Dot(tpl.weights, window) / sumW

				// The centered template sums to zero, so the window
				// mean drops out of the numerator.
				num += floats.Dot(centered[c], window)
				floats.AddConst(-mean, window)
				energyI += weightedSquares(tpl.weights, window)
			}

			den := math.Sqrt(energyT * energyI)
			if den < 1e-9 {
				continue
			}
			if r := num / den; r > best {
				best, bestAt = r, image.Pt(dx, dy)
			}
		}
	}
	return math.Min(best, 1), bestAt
}

func extractWindow(dst, plane []float64, stride, dx, dy, w, h int) {
	for y := 0; y < h; y++ {
		row := (y+dy)*stride + dx
		copy(dst[y*w:(y+1)*w], plane[row:row+w])
	}
}

func weightedSquares(weights, v []float64) float64 {
	var sum float64
	for i, x := range v {
		sum += weights[i] * x * x
	}
	return sum
}
