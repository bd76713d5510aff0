package imaging

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// HuePeriod is the length of the hue circle in the units HuePlane returns.
// Hue is reported in half-degrees (0-180) as in 8-bit HSV images.
const HuePeriod = 180.0

// HuePlane converts every pixel of img to its HSV hue, row-major.
//
// Hue is returned on the 0-180 scale (see HuePeriod). Achromatic pixels
// (gray, black, white) have hue 0.
//
// # Color Conversion
//
// The 8-bit RGB components are normalized to 0-1 and converted with
// go-colorful, which yields hue in degrees (0-360); the value is then
// halved.
func HuePlane(img *image.NRGBA) []float64 {
	b := img.Bounds()
	hues := make([]float64, 0, b.Dx()*b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			h, _, _ := colorful.Color{
				R: float64(c.R) / 255.0,
				G: float64(c.G) / 255.0,
				B: float64(c.B) / 255.0,
			}.Hsv()
			hues = append(hues, h/2)
		}
	}
	return hues
}

// HueDistance returns the distance between two hues on the HuePeriod
// circle. The result is within [0, HuePeriod/2].
func HueDistance(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	for d >= HuePeriod {
		d -= HuePeriod
	}
	if HuePeriod-d < d {
		return HuePeriod - d
	}
	return d
}
