package imaging

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Red is the annotation color of the debug images.
var Red = color.RGBA{255, 0, 0, 255}

// Drawable returns a mutable RGBA copy of img with the same bounds.
// The source image is never modified.
func Drawable(img image.Image) *image.RGBA {
	return clone.AsRGBA(img)
}

// DrawRect draws the outline of r with the given line thickness. Lines are
// drawn inward from the rectangle edges and clipped to the image.
func DrawRect(dst *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	bounds := dst.Bounds()
	r = r.Intersect(bounds)
	if r.Empty() {
		return
	}

	for t := 0; t < thickness; t++ {
		top, bottom := r.Min.Y+t, r.Max.Y-1-t
		left, right := r.Min.X+t, r.Max.X-1-t
		if top > bottom || left > right {
			return
		}
		for x := left; x <= right; x++ {
			dst.Set(x, top, c)
			dst.Set(x, bottom, c)
		}
		for y := top; y <= bottom; y++ {
			dst.Set(left, y, c)
			dst.Set(right, y, c)
		}
	}
}

// DrawLabel draws text with its baseline at (x, y) using the 7x13 bitmap
// font. Glyphs falling outside the image are clipped.
func DrawLabel(dst *image.RGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// SavePNG writes img as a PNG file, creating parent directories as needed.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
