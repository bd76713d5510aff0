//go:build cgo

package ocr

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/disintegration/imaging"
)

// createCountImage renders text in black on white and scales it up so the
// 7x13 bitmap font is large enough for Tesseract.
func createCountImage(text string, scale int) image.Image {
	width := len(text)*7 + 20
	img := image.NewRGBA(image.Rect(0, 0, width, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(10), Y: fixed.I(17)},
	}
	d.DrawString(text)

	return imaging.Resize(img, width*scale, 24*scale, imaging.NearestNeighbor)
}

func TestReader_GetInfo(t *testing.T) {
	info := NewReader("eng").GetInfo()
	if !info.Available || info.Backend != "gosseract" {
		t.Errorf("info: %+v", info)
	}
}

func TestReader_ReadStackCount(t *testing.T) {
	r := NewReader("eng")

	got, err := r.ReadStackCount(createCountImage("12", 4))
	if err != nil {
		t.Skipf("Tesseract could not read the synthetic count: %v", err)
	}
	if got != 12 {
		t.Logf("OCR read %d for 12 (bitmap font recognition is approximate)", got)
	}
}

func TestReader_ReadStackCount_Blank(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 60, 30))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}

	if _, err := NewReader("eng").ReadStackCount(blank); err == nil {
		t.Error("blank image should not yield a count")
	}
}
