// Package ocr reads the stack counts printed on loot slots using Tesseract.
//
// The game prints the number of stacked items in the lower part of a slot.
// Detection only needs that one number, so this package wraps Tesseract
// (via gosseract/v2) in a single-line, digits-only configuration and parses
// the result into an integer.
//
// # Prerequisites
//
// Tesseract and its English language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without CGO compile a stub Reader whose ReadStackCount always
// returns ErrUnavailable. Detection keeps working; counts are simply
// omitted.
//
// # Parsing
//
// ParseStackCount accepts the forms the game renders ("12", "x12") and
// tolerates the stray characters Tesseract tends to add around small
// glyphs. Zero and missing numbers are reported as ErrNoCount.
package ocr
