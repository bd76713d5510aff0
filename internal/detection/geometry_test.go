package detection

import (
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/loot-detect-mcp/internal/config"
)

func TestComputeSlots_DefaultLayout(t *testing.T) {
	slots, err := ComputeSlots(image.Rect(0, 0, 1920, 1080), config.Default().Layout)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("slot count: got %d, want 4", len(slots))
	}

	tests := []struct {
		index  int
		cell   image.Rectangle
		sample image.Rectangle
	}{
		{1, image.Rect(1575, 908, 1657, 990), image.Rect(1581, 914, 1651, 984)},
		{2, image.Rect(1658, 908, 1740, 990), image.Rect(1664, 914, 1734, 984)},
		{3, image.Rect(1741, 908, 1823, 990), image.Rect(1747, 914, 1817, 984)},
		// The last cell runs one pixel past the crop and is clipped
		{4, image.Rect(1824, 908, 1905, 990), image.Rect(1830, 914, 1900, 984)},
	}

	for i, tt := range tests {
		s := slots[i]
		if s.Index != tt.index {
			t.Errorf("slot %d: index %d", i, s.Index)
		}
		if s.Cell != tt.cell {
			t.Errorf("slot %d cell: got %v, want %v", tt.index, s.Cell, tt.cell)
		}
		if s.Sample != tt.sample {
			t.Errorf("slot %d sample: got %v, want %v", tt.index, s.Sample, tt.sample)
		}
	}
}

func TestComputeSlots_FullGrid(t *testing.T) {
	layout := config.Default().Layout
	layout.SlotLimit = 0

	slots, err := ComputeSlots(image.Rect(0, 0, 1920, 1080), layout)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("slot count: got %d, want 8", len(slots))
	}
	if got := slots[4].Cell.Min; got != image.Pt(1575, 990) {
		t.Errorf("slot 5 origin: got %v, want (1575,990)", got)
	}

	crop := layout.Crop.Rectangle()
	for i, a := range slots {
		if a.Index != i+1 {
			t.Errorf("slot %d has index %d", i, a.Index)
		}
		if !a.Sample.In(a.Cell) || !a.Sample.In(crop) {
			t.Errorf("slot %d sample %v not inside cell %v and crop %v", a.Index, a.Sample, a.Cell, crop)
		}
		for _, b := range slots[i+1:] {
			if a.Sample.Overlaps(b.Sample) {
				t.Errorf("slots %d and %d overlap", a.Index, b.Index)
			}
		}
	}
}

func TestComputeSlots_TooSmall(t *testing.T) {
	layout := config.Default().Layout

	tests := []struct {
		name   string
		bounds image.Rectangle
	}{
		{"720p", image.Rect(0, 0, 1280, 720)},
		{"narrow", image.Rect(0, 0, 1899, 1080)},
		{"short", image.Rect(0, 0, 1920, 1069)},
		{"empty", image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSlots(tt.bounds, layout)
			if !errors.Is(err, ErrScreenshotTooSmall) {
				t.Errorf("got %v, want ErrScreenshotTooSmall", err)
			}
		})
	}
}

func TestComputeSlots_CropOutsideScreenshot(t *testing.T) {
	layout := config.Default().Layout
	layout.MinWidth, layout.MinHeight = 0, 0

	tests := []struct {
		name   string
		bounds image.Rectangle
	}{
		{"crop cut to 125x92", image.Rect(0, 0, 1700, 1000)},
		{"crop missed entirely", image.Rect(0, 0, 1500, 900)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSlots(tt.bounds, layout)
			if !errors.Is(err, ErrScreenshotTooSmall) {
				t.Errorf("got %v, want ErrScreenshotTooSmall", err)
			}
		})
	}
}

func TestComputeSlots_MinimumSizeTruncatesCrop(t *testing.T) {
	// 1900x1070 meets the default minimum but ends inside the crop
	// (1575,908)-(1905,1072); the crop shrinks to 325x162.
	bounds := image.Rect(0, 0, 1900, 1070)
	layout := config.Default().Layout

	if got, want := CropRect(bounds, layout), image.Rect(1575, 908, 1900, 1070); got != want {
		t.Errorf("CropRect: got %v, want %v", got, want)
	}

	slots, err := ComputeSlots(bounds, layout)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}

	// 81x81 cells, 5 px padding around the 70x70 sampling box
	tests := []struct {
		index  int
		cell   image.Rectangle
		sample image.Rectangle
	}{
		{1, image.Rect(1575, 908, 1656, 989), image.Rect(1580, 913, 1650, 983)},
		{4, image.Rect(1821, 908, 1900, 989), image.Rect(1826, 913, 1896, 983)},
	}
	for _, tt := range tests {
		s := slots[tt.index-1]
		if s.Cell != tt.cell || s.Sample != tt.sample {
			t.Errorf("slot %d: got cell %v sample %v, want %v %v", tt.index, s.Cell, s.Sample, tt.cell, tt.sample)
		}
		if !s.Sample.In(bounds) {
			t.Errorf("slot %d sample %v outside the screenshot", tt.index, s.Sample)
		}
	}
}

func TestComputeSlots_OffsetBounds(t *testing.T) {
	layout := config.Default().Layout
	slots, err := ComputeSlots(image.Rect(100, 50, 2020, 1130), layout)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if got := slots[0].Sample.Min; got != image.Pt(1681, 964) {
		t.Errorf("sample origin: got %v, want (1681,964)", got)
	}
}

func TestCropRect(t *testing.T) {
	got := CropRect(image.Rect(0, 0, 1920, 1080), config.Default().Layout)
	if want := image.Rect(1575, 908, 1905, 1072); got != want {
		t.Errorf("CropRect: got %v, want %v", got, want)
	}
}
