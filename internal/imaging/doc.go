// Package imaging provides the pixel-level operations used by the loot
// detector.
//
// This package implements image decoding, cropping, canonical resizing,
// alpha splitting, Gaussian smoothing, hue extraction, variance and the
// drawing helpers behind the debug images. All operations work with
// standard Go image types and use a coordinate system where (0,0) is at
// the top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based. Rectangles follow the
// image.Rectangle convention: Min is inclusive, Max is exclusive.
//
// Functions that produce a new image (Crop, Canonicalize, SplitAlpha,
// Smooth) return images whose bounds start at (0,0), regardless of where
// the source region was located.
//
// # Color Planes and Masks
//
// Icon templates carry an alpha channel. SplitAlpha separates it into an
// opaque color plane (*image.NRGBA with A=255 everywhere) and a mask
// (*image.Gray holding the original alpha). Images without alpha yield a
// fully opaque mask.
//
// # Hue Scale
//
// HuePlane reports hue on the 0-180 half-degree scale (HuePeriod) so that
// hue distances and thresholds match the conventions of 8-bit HSV images.
//
// # Thread Safety
//
// Every function is stateless. Inputs are never modified except by the
// Draw* helpers, which write into the destination image passed to them.
package imaging
