package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image.
//
// The region must lie entirely inside the image bounds. The returned image
// is a copy whose bounds start at (0,0).
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, r), nil
}

// Canonicalize resizes an image to a size x size square using an
// area-averaging box filter. An image that is already size x size is
// copied unchanged, pixel for pixel.
func Canonicalize(img image.Image, size int) *image.NRGBA {
	return imaging.Resize(img, size, size, imaging.Box)
}

// Upscale enlarges an image by an integer factor with Lanczos resampling.
// Small text (such as stack counts) reads far more reliably after upscaling.
func Upscale(img image.Image, factor int) *image.NRGBA {
	b := img.Bounds()
	if factor <= 1 {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.Lanczos)
}

// SplitAlpha separates an image into an opaque color plane and an opacity
// mask.
//
// Color values are taken non-premultiplied, so a half-transparent red pixel
// contributes pure red to the color plane and 128 to the mask. Images
// without an alpha channel produce a mask of 255 everywhere.
func SplitAlpha(img image.Image) (*image.NRGBA, *image.Gray) {
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())
	colors := image.NewNRGBA(rect)
	mask := image.NewGray(rect)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			mask.SetGray(x, y, color.Gray{Y: c.A})
			c.A = 255
			colors.SetNRGBA(x, y, c)
		}
	}
	return colors, mask
}

// ResizeMask resizes an opacity mask to size x size with nearest-neighbour
// sampling so that mask edges stay hard.
func ResizeMask(mask *image.Gray, size int) *image.Gray {
	b := mask.Bounds()
	if b.Dx() == size && b.Dy() == size && b.Min == (image.Point{}) {
		return mask
	}

	resized := imaging.Resize(mask, size, size, imaging.NearestNeighbor)
	out := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			out.SetGray(x, y, color.Gray{Y: resized.NRGBAAt(x, y).R})
		}
	}
	return out
}

// TopRows returns a read-only view of the first n rows of img.
func TopRows(img *image.NRGBA, n int) *image.NRGBA {
	b := img.Bounds()
	return img.SubImage(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+n)).(*image.NRGBA)
}

// TopRowsGray returns a read-only view of the first n rows of a mask.
func TopRowsGray(img *image.Gray, n int) *image.Gray {
	b := img.Bounds()
	return img.SubImage(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+n)).(*image.Gray)
}

// EncodePNGBase64 encodes an image as a base64 PNG string.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
