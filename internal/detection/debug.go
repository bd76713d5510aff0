package detection

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/ironsheep/loot-detect-mcp/internal/imaging"
)

// SlotOverlayFile is the name of the slot overlay image inside the
// overlay directory. It is overwritten on every scan.
const SlotOverlayFile = "loot_gui_slots_debug.png"

// Annotate draws a red outline and an "Item (0.97)" label on a copy of the
// loot GUI crop for every detection.
func Annotate(res *Result) *image.RGBA {
	out := imaging.Drawable(res.Crop)
	cells := make(map[int]image.Rectangle, len(res.Slots))
	for _, r := range res.Slots {
		cells[r.Slot.Index] = r.Slot.Cell.Sub(res.CropOrigin)
	}

	for _, det := range res.Detections {
		cell, ok := cells[det.Slot]
		if !ok {
			continue
		}
		imaging.DrawRect(out, cell, imaging.Red, 2)
		imaging.DrawLabel(out, cell.Min.X+2, cell.Min.Y+13, fmt.Sprintf("%s (%.2f)", det.Item, det.Confidence), imaging.Red)
	}
	return out
}

// SlotOverlay outlines the sampling box of every slot on a copy of the
// loot GUI crop. It is used to check the layout against a new resolution.
func SlotOverlay(res *Result) *image.RGBA {
	out := imaging.Drawable(res.Crop)
	for _, r := range res.Slots {
		imaging.DrawRect(out, r.Slot.Sample.Sub(res.CropOrigin), imaging.Red, 2)
	}
	return out
}

// OverlayFile renders the slot overlay for the screenshot at path without
// matching any templates.
func (d *Detector) OverlayFile(path string) (*image.RGBA, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := d.detect(img, &PreparedLibrary{}, 1)
	if err != nil {
		return nil, err
	}
	return SlotOverlay(res), nil
}

// writeDebug stores the crop, the annotated crop and the slot overlay.
// Debug output never affects the detections, so failures are only logged.
func (d *Detector) writeDebug(screenshotPath string, res *Result) {
	base := filepath.Base(screenshotPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".png"

	outputs := []struct {
		path string
		img  image.Image
	}{
		{filepath.Join(d.cfg.Debug.CropDir, name), res.Crop},
		{filepath.Join(d.cfg.Debug.AnnotatedDir, name), Annotate(res)},
		{filepath.Join(d.cfg.Debug.SlotOverlayDir, SlotOverlayFile), SlotOverlay(res)},
	}
	d.debugMu.Lock()
	defer d.debugMu.Unlock()
	for _, o := range outputs {
		if err := imaging.SavePNG(o.path, o.img); err != nil {
			d.log.Warn().Err(err).Str("path", o.path).Msg("failed to write debug image")
			continue
		}
		d.log.Debug().Str("path", o.path).Msg("debug image written")
	}
}
