package imaging

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// Samples flattens the RGB components of img into one slice of 0-255
// values, in row-major pixel order (R, G, B per pixel). Alpha is ignored.
func Samples(img *image.NRGBA) []float64 {
	b := img.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			out = append(out, float64(c.R), float64(c.G), float64(c.B))
		}
	}
	return out
}

// Variance returns the population variance of all RGB components of img.
//
// An empty inventory slot is a near-uniform background, so its variance is
// close to zero (typically 0-2); any icon pushes it well above that.
func Variance(img *image.NRGBA) float64 {
	s := Samples(img)
	n := float64(len(s))
	if n < 2 {
		return 0
	}
	// stat.MeanVariance is the unbiased estimator; rescale to population.
	_, v := stat.MeanVariance(s, nil)
	return v * (n - 1) / n
}
