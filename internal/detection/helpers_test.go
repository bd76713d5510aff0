package detection

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	imgx "github.com/disintegration/imaging"

	"github.com/ironsheep/loot-detect-mcp/internal/config"
)

// background is the loot GUI fill used by synthetic screenshots. It is a
// neutral gray so that an unused slot has zero variance.
var background = color.NRGBA{R: 40, G: 40, B: 40, A: 255}

// blockIcon creates a size x size opaque icon made of 8x8 blocks of random
// colors. Different seeds give unrelated icons.
func blockIcon(seed int64, size int) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for by := 0; by < size; by += 8 {
		for bx := 0; bx < size; bx += 8 {
			c := color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
			for y := by; y < by+8 && y < size; y++ {
				for x := bx; x < bx+8 && x < size; x++ {
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}
	return img
}

// opaqueMask creates a fully opaque size x size mask.
func opaqueMask(size int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, size, size))
	for i := range m.Pix {
		m.Pix[i] = 255
	}
	return m
}

// writePNG encodes img to path.
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

// createScreenshot renders a 1920x1080 screenshot with icons placed in the
// sampling boxes of the given 1-based slots. Icons are scaled up with
// nearest-neighbour sampling so that canonicalization restores them exactly.
func createScreenshot(t *testing.T, layout config.Layout, icons map[int]image.Image) *image.NRGBA {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 1920, 1080))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = background.R, background.G, background.B, background.A
	}

	slots, err := ComputeSlots(img.Bounds(), layout)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	for _, s := range slots {
		icon, ok := icons[s.Index]
		if !ok {
			continue
		}
		scaled := imgx.Resize(icon, s.Sample.Dx(), s.Sample.Dy(), imgx.NearestNeighbor)
		img = imgx.Paste(img, scaled, s.Sample.Min)
	}
	return img
}

// createTemplateDir writes one PNG per file name into a temp directory.
func createTemplateDir(t *testing.T, icons map[string]image.Image) string {
	t.Helper()

	dir := t.TempDir()
	for name, icon := range icons {
		writePNG(t, filepath.Join(dir, name), icon)
	}
	return dir
}

type fakeStackReader struct {
	count int
	err   error
	calls int
}

func (f *fakeStackReader) ReadStackCount(img image.Image) (int, error) {
	f.calls++
	return f.count, f.err
}
