//go:build !cgo

package ocr

import (
	"errors"
	"image"
)

// ErrUnavailable is returned by every read in builds without CGO.
var ErrUnavailable = errors.New("OCR requires a CGO build with Tesseract installed")

// Reader is a stub in builds without CGO.
type Reader struct {
	Language string
}

// NewReader creates a stub Reader.
func NewReader(language string) *Reader {
	if language == "" {
		language = "eng"
	}
	return &Reader{Language: language}
}

// ReadStackCount always fails with ErrUnavailable.
func (r *Reader) ReadStackCount(img image.Image) (int, error) {
	return 0, ErrUnavailable
}

// GetInfo reports that OCR is unavailable.
func (r *Reader) GetInfo() Info {
	return Info{Language: r.Language, Backend: "none"}
}
