package imaging

import (
	"image"
	"math"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
)

// Smooth applies a size x size Gaussian blur with the given sigma.
//
// Only the color channels are convolved; alpha is left untouched. Pixels
// beyond the border are mirrored without repeating the edge pixel
// (dcb|abcd|cba), the same border rule OpenCV uses by default. The result
// has bounds starting at (0,0).
//
// A mild blur (size 3, sigma 0.6) suppresses resampling noise and
// anti-aliasing differences between an in-game icon and its template
// without erasing the glyph outline.
func Smooth(img image.Image, size int, sigma float64) *image.NRGBA {
	src := imaging.Clone(img)
	pad := size / 2
	if pad < 1 {
		return src
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	padded := image.NewNRGBA(image.Rect(0, 0, w+2*pad, h+2*pad))
	for y := 0; y < h+2*pad; y++ {
		sy := reflect101(y-pad, h)
		for x := 0; x < w+2*pad; x++ {
			padded.SetNRGBA(x, y, src.NRGBAAt(reflect101(x-pad, w), sy))
		}
	}

	g := gift.New(gift.Convolution(gaussianKernel(size, sigma), true, false, false, 0))
	blurred := image.NewNRGBA(g.Bounds(padded.Bounds()))
	g.Draw(blurred, padded)
	return imaging.Crop(blurred, image.Rect(pad, pad, pad+w, pad+h))
}

// reflect101 maps a coordinate outside [0, n) back inside by mirroring
// about the first and last pixel.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// gaussianKernel builds a square size x size Gaussian kernel, row-major.
//
// The kernel is not normalized here; gift normalizes it when the filter is
// constructed with normalize=true.
func gaussianKernel(size int, sigma float64) []float32 {
	if size < 1 {
		size = 1
	}
	half := size / 2
	k := make([]float32, 0, size*size)
	for y := -half; y <= half; y++ {
		for x := -half; x <= half; x++ {
			d2 := float64(x*x + y*y)
			k = append(k, float32(math.Exp(-d2/(2*sigma*sigma))))
		}
	}
	return k
}
