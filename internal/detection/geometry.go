package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/loot-detect-mcp/internal/config"
)

// ErrScreenshotTooSmall is returned when a screenshot cannot contain the
// configured loot GUI.
var ErrScreenshotTooSmall = errors.New("screenshot smaller than the loot GUI layout")

// Slot is one cell of the loot GUI grid.
type Slot struct {
	// Index is the 1-based slot number in row-major order.
	Index int `json:"index"`

	// Cell is the full grid cell in screenshot coordinates.
	Cell image.Rectangle `json:"cell"`

	// Sample is the centered box inside Cell that is compared against
	// templates. It excludes the cell border.
	Sample image.Rectangle `json:"sample"`
}

// CropRect returns the loot GUI rectangle for a screenshot with the given
// bounds, truncated to the screenshot when it extends past an edge.
func CropRect(bounds image.Rectangle, layout config.Layout) image.Rectangle {
	return layout.Crop.Rectangle().Add(bounds.Min).Intersect(bounds)
}

// ComputeSlots lays the slot grid over a screenshot with the given bounds.
//
// The loot GUI crop, truncated to the screenshot, is divided into
// Rows x Cols equal cells (integer division; leftover pixels stay unused).
// A screenshot that meets the minimum size but cuts a few pixels off the
// crop therefore gets slightly smaller cells. Cells are placed at
// col*(cellW+ColumnGap), row*(cellH+RowGap) from the crop origin and
// clipped to the crop. Each cell gets an InnerSize x InnerSize sampling box
// centered in it. Only the first SlotCount() cells are returned.
//
// # Errors
//
//   - ErrScreenshotTooSmall if the screenshot is below MinWidth x MinHeight,
//     misses the crop entirely, or truncates it so far that a sampling box
//     no longer fits
//   - a layout error if a sampling box would fall outside a complete crop
func ComputeSlots(bounds image.Rectangle, layout config.Layout) ([]Slot, error) {
	if bounds.Dx() < layout.MinWidth || bounds.Dy() < layout.MinHeight {
		return nil, fmt.Errorf("%w: %dx%d is below the minimum %dx%d",
			ErrScreenshotTooSmall, bounds.Dx(), bounds.Dy(), layout.MinWidth, layout.MinHeight)
	}
	full := layout.Crop.Rectangle().Add(bounds.Min)
	crop := CropRect(bounds, layout)
	if crop.Empty() {
		return nil, fmt.Errorf("%w: loot GUI %v outside %v", ErrScreenshotTooSmall, full, bounds)
	}
	if layout.Rows <= 0 || layout.Cols <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", layout.Rows, layout.Cols)
	}

	cellW := crop.Dx() / layout.Cols
	cellH := crop.Dy() / layout.Rows
	padX := (cellW - layout.InnerSize) / 2
	padY := (cellH - layout.InnerSize) / 2

	count := layout.SlotCount()
	slots := make([]Slot, 0, count)
	for row := 0; row < layout.Rows && len(slots) < count; row++ {
		for col := 0; col < layout.Cols && len(slots) < count; col++ {
			origin := crop.Min.Add(image.Pt(col*(cellW+layout.ColumnGap), row*(cellH+layout.RowGap)))
			cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(cellW, cellH))}

			sampleMin := origin.Add(image.Pt(padX, padY))
			sample := image.Rectangle{Min: sampleMin, Max: sampleMin.Add(image.Pt(layout.InnerSize, layout.InnerSize))}
			if !sample.In(crop) {
				if crop != full {
					return nil, fmt.Errorf("%w: slot %d does not fit in the truncated loot GUI %v",
						ErrScreenshotTooSmall, len(slots)+1, crop)
				}
				return nil, fmt.Errorf("slot %d sampling box %v falls outside the loot GUI %v", len(slots)+1, sample, crop)
			}

			slots = append(slots, Slot{
				Index:  len(slots) + 1,
				Cell:   cell.Intersect(crop),
				Sample: sample,
			})
		}
	}
	return slots, nil
}
