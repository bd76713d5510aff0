package ocr

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoCount is returned when no positive stack count could be read.
var ErrNoCount = errors.New("no stack count found")

// maxStackCount bounds parsed counts; anything larger is OCR noise.
const maxStackCount = 9999

// digitWhitelist restricts Tesseract to the characters a count can contain.
const digitWhitelist = "0123456789xX"

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Backend   string `json:"backend"`
}

// ParseStackCount extracts the first run of digits from OCR output.
//
//	"12"    -> 12
//	"x3\n"  -> 3
//	" 4 ."  -> 4
//	"x"     -> ErrNoCount
func ParseStackCount(text string) (int, error) {
	start := strings.IndexAny(text, "0123456789")
	if start < 0 {
		return 0, ErrNoCount
	}
	end := start
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}

	n, err := strconv.Atoi(text[start:end])
	if err != nil || n <= 0 || n > maxStackCount {
		return 0, ErrNoCount
	}
	return n, nil
}
