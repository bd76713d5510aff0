//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Reader reads stack counts with a native Tesseract client.
//
// A new client is created per call; gosseract clients are not safe for
// concurrent use and the calls are rare.
type Reader struct {
	Language string
}

// NewReader creates a Reader for the given Tesseract language code.
func NewReader(language string) *Reader {
	if language == "" {
		language = "eng"
	}
	return &Reader{Language: language}
}

// ReadStackCount runs single-line, digits-only OCR on img and parses the
// first number found.
func (r *Reader) ReadStackCount(img image.Image) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.Language); err != nil {
		return 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist(digitWhitelist); err != nil {
		return 0, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return 0, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return 0, fmt.Errorf("OCR failed: %w", err)
	}
	return ParseStackCount(text)
}

// GetInfo reports the Tesseract version behind r.
func (r *Reader) GetInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	return Info{
		Available: true,
		Version:   client.Version(),
		Language:  r.Language,
		Backend:   "gosseract",
	}
}
