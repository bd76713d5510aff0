//go:build gocv

package detection

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// structuralScore runs OpenCV's masked TM_CCOEFF_NORMED over the slot
// glyph and returns the clamped maximum and its location.
//
// Built with -tags gocv. The pure-Go scorer is used otherwise.
//
// The mask is passed as alpha/255. OpenCV multiplies both the centered
// template and the centered window by the mask, so a pixel's weight in the
// correlation is mask squared while the pure-Go scorer weights it linearly.
// The two backends agree for fully opaque or fully transparent pixels and
// differ slightly on partially transparent edges.
func structuralScore(slot *prepared, tpl *preparedTemplate) (float64, image.Point) {
	if tpl.glyph.width > slot.width || tpl.glyph.height > slot.height {
		return 0, image.Point{}
	}

	img, err := gocv.ImageToMatRGB(slot.smooth)
	if err != nil {
		return 0, image.Point{}
	}
	defer img.Close()

	templ, err := gocv.ImageToMatRGB(tpl.glyph.smooth)
	if err != nil {
		return 0, image.Point{}
	}
	defer templ.Close()

	gray, err := gocv.ImageGrayToMatGray(compactGray(tpl.mask))
	if err != nil {
		return 0, image.Point{}
	}
	defer gray.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	gray.ConvertToWithParams(&mask, gocv.MatTypeCV32F, 1.0/255, 0)

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(img, templ, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	score := float64(maxVal)
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0, maxLoc
	}
	return math.Min(score, 1), maxLoc
}

// compactGray copies m into a fresh image whose pixel buffer holds exactly
// its own rows.
func compactGray(m *image.Gray) *image.Gray {
	b := m.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}
