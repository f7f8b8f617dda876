// Package transform converts coordinates between a document's native point
// space and a rasterized pixel space.
//
// Point space has its origin at the bottom-left of the page with units of
// 1/72 inch; pixel space has its origin at the top-left with units of pixels
// at a given DPI. Converting between the two scales both axes by dpi/72 and
// flips the vertical axis.
//
// A Transform is a pure value with no hidden state; the forward and inverse
// maps round-trip within 1/scale point units (the quantization introduced by
// rounding to integer pixels).
package transform

import (
	"math"

	"github.com/tsawler/formula/model"
)

// PointsPerInch is the resolution of the document point coordinate system.
const PointsPerInch = 72.0

// AssumedPageWidthPt is the page width assumed by FromRaster when the true
// page geometry is unavailable (612 pt, US Letter).
const AssumedPageWidthPt = 612.0

// Transform maps between point space and pixel space for one page.
type Transform struct {
	widthPt  float64
	heightPt float64
	scale    float64
	assumed  bool
}

// New creates a transform from exact page geometry: the page's point-space
// dimensions and the raster DPI.
func New(widthPt, heightPt float64, dpi int) Transform {
	return Transform{
		widthPt:  widthPt,
		heightPt: heightPt,
		scale:    float64(dpi) / PointsPerInch,
	}
}

// FromRaster creates a fallback transform for a raster whose true page
// geometry is unknown. It assumes a standard page width of 612 pt and derives
// the page height from the raster's aspect ratio, so it carries a systematic
// error proportional to how far the real page deviates from that width.
// Assumed reports true on the result, distinguishing it from the exact path.
func FromRaster(imgWidth, imgHeight int) Transform {
	w := float64(imgWidth)
	if w < 1 {
		w = 1
	}
	h := float64(imgHeight)
	heightPt := AssumedPageWidthPt * h / w
	return Transform{
		widthPt:  AssumedPageWidthPt,
		heightPt: heightPt,
		scale:    w / AssumedPageWidthPt,
		assumed:  true,
	}
}

// Assumed reports whether the transform was built from an assumed page width
// rather than exact page geometry.
func (t Transform) Assumed() bool {
	return t.assumed
}

// Scale returns the pixels-per-point scale factor.
func (t Transform) Scale() float64 {
	return t.scale
}

// PageWidthPt returns the page width in points.
func (t Transform) PageWidthPt() float64 {
	return t.widthPt
}

// PageHeightPt returns the page height in points.
func (t Transform) PageHeightPt() float64 {
	return t.heightPt
}

// ToPixel maps a point-space coordinate to integer pixel coordinates,
// flipping the vertical axis.
func (t Transform) ToPixel(xPt, yPt float64) (int, int) {
	x := int(math.Round(xPt * t.scale))
	y := int(math.Round((t.heightPt - yPt) * t.scale))
	return x, y
}

// ToPoint maps pixel coordinates back to point space.
func (t Transform) ToPoint(xPx, yPx int) (float64, float64) {
	x := float64(xPx) / t.scale
	y := t.heightPt - float64(yPx)/t.scale
	return x, y
}

// RectToPixels converts a point-space rectangle to pixel space by mapping
// both corners independently and re-sorting the results, since the vertical
// flip inverts corner order. The returned rectangle may be invalid when the
// input collapses to zero pixels; callers check IsValid.
func (t Transform) RectToPixels(r model.Rect) model.Rect {
	x0, y0 := t.ToPixel(r.X0, r.Y0)
	x1, y1 := t.ToPixel(r.X1, r.Y1)
	return model.NormalizedRect(float64(x0), float64(y0), float64(x1), float64(y1))
}

// RectToPoints converts a pixel-space rectangle back to point space,
// re-sorting the corners after the flip.
func (t Transform) RectToPoints(r model.Rect) model.Rect {
	x0, y0 := t.ToPoint(int(r.X0), int(r.Y0))
	x1, y1 := t.ToPoint(int(r.X1), int(r.Y1))
	return model.NormalizedRect(x0, y0, x1, y1)
}
