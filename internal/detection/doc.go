// Package detection recognizes loot icons in game screenshots by template
// matching.
//
// The loot GUI occupies a fixed rectangle of the screen. It is divided into
// a grid of slots, and each slot is compared against a library of icon
// templates. A slot whose best template scores at or above the threshold
// becomes a Detection.
//
// # Pipeline
//
// For every screenshot:
//
//  1. Geometry: ComputeSlots lays the configured grid over the screenshot
//     and centers a sampling box inside each cell, away from the cell border
//  2. Canonicalization: each sampling box is cropped and resized to the
//     canonical template size with an area-averaging filter
//  3. Empty check: slots whose pixel variance is below the flatness
//     threshold are treated as empty and skipped
//  4. Scoring: the slot is scored against every template (see Matcher)
//  5. Selection: the highest combined score wins; the first template wins
//     ties; the slot is reported only if the winner reaches the threshold
//
// # Scoring
//
// Only the glyph region, the top two thirds of the canonical square, is
// compared. The bottom third is where the game prints stack counts.
//
//   - Structural: masked normalized cross-correlation of the Gaussian
//     smoothed slot and template, clamped to [0,1]
//   - Color: 1 - d/90, where d is the mean circular hue distance over the
//     template's opaque pixels on the 0-180 hue scale (0.5 when none)
//   - Combined: 0.9*structural + 0.1*color with the default weights
//
// Building with -tags gocv swaps the pure-Go structural scorer for OpenCV's
// matchTemplate.
//
// # Templates
//
// A template library is every image file in one directory. Alpha becomes
// the comparison mask, and the file name becomes the item name
// ("potion_of_life.png" is "Potion of Life"). Unreadable files are skipped.
// LibraryCache reloads a directory only when its listing changes.
//
// # Failure Model
//
// Detect never fails: unreadable input, a missing template directory and
// screenshots too small for the layout all produce an empty result and a
// log entry. DetectFile exposes the underlying error.
//
// # Coordinate System
//
// Slot rectangles are in screenshot coordinates with an inclusive top-left
// and exclusive bottom-right corner. Debug images use coordinates relative
// to the loot GUI crop.
package detection
