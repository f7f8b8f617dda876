package dataset

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/formula/model"
)

// overlay appearance: red boxes, 3px border.
var overlayColor = color.NRGBA{R: 220, G: 40, B: 40, A: 255}

const overlayBorder = 3

// Overlay returns a copy of the raster with annotation rectangles drawn on
// it, for eyeballing detector or dataset output. Boxes are in pixel space
// with a top-left origin.
func Overlay(src image.Image, boxes []model.Rect) *image.NRGBA {
	dst := imaging.Clone(src)
	bounds := dst.Bounds()
	for _, b := range boxes {
		drawRect(dst, b, bounds)
	}
	return dst
}

func drawRect(dst *image.NRGBA, b model.Rect, bounds image.Rectangle) {
	x0, y0 := int(b.X0), int(b.Y0)
	x1, y1 := int(b.X1), int(b.Y1)
	for t := 0; t < overlayBorder; t++ {
		for x := x0; x <= x1; x++ {
			setPx(dst, bounds, x, y0+t)
			setPx(dst, bounds, x, y1-t)
		}
		for y := y0; y <= y1; y++ {
			setPx(dst, bounds, x0+t, y)
			setPx(dst, bounds, x1-t, y)
		}
	}
}

func setPx(dst *image.NRGBA, bounds image.Rectangle, x, y int) {
	if image.Pt(x, y).In(bounds) {
		dst.SetNRGBA(x, y, overlayColor)
	}
}

// SaveOverlay draws boxes on an image file and writes a preview, downscaled
// to at most maxWidth pixels wide when maxWidth is positive. Previews are
// QA artifacts; quality is traded for speed in the downscale.
func SaveOverlay(imagePath string, boxes []model.Rect, outPath string, maxWidth int) error {
	src, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("opening raster: %w", err)
	}

	preview := Overlay(src, boxes)
	if w := preview.Bounds().Dx(); maxWidth > 0 && w > maxWidth {
		h := preview.Bounds().Dy() * maxWidth / w
		scaled := image.NewNRGBA(image.Rect(0, 0, maxWidth, h))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), preview, preview.Bounds(), xdraw.Over, nil)
		preview = scaled
	}

	if err := imaging.Save(preview, outPath); err != nil {
		return fmt.Errorf("saving overlay: %w", err)
	}
	return nil
}
