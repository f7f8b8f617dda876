//go:build ocr

package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/formula/model"
	"github.com/tsawler/formula/transform"
)

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in. This build has OCR enabled, so it is never returned here; it
// exists so callers can test against it unconditionally.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// minWordConfidence drops Tesseract words below this confidence, which are
// overwhelmingly speckle and rule fragments rather than text.
const minWordConfidence = 40.0

// Renderer supplies page rasters and geometry for OCR. *render.Document
// satisfies it.
type Renderer interface {
	PageSize(i int) (widthPt, heightPt float64, err error)
	Render(i, dpi int) (image.Image, error)
}

// OCRSource recovers word spans from page rasters via Tesseract. It is not
// safe for concurrent use; create one per worker.
type OCRSource struct {
	renderer Renderer
	client   *gosseract.Client
	dpi      int
}

// NewOCRSource creates an OCR span source rendering pages at the given DPI.
// The source must be closed to release Tesseract resources.
func NewOCRSource(renderer Renderer, dpi int) (*OCRSource, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("configuring OCR language: %w", err)
	}
	return &OCRSource{renderer: renderer, client: client, dpi: dpi}, nil
}

// Close releases the Tesseract client.
func (o *OCRSource) Close() error {
	if o.client != nil {
		err := o.client.Close()
		o.client = nil
		return err
	}
	return nil
}

// PageSpans renders the page and returns one span per recognized word,
// with boxes converted from pixel space back to point space.
func (o *OCRSource) PageSpans(ctx context.Context, pageIndex int) ([]model.Span, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	wPt, hPt, err := o.renderer.PageSize(pageIndex)
	if err != nil {
		return nil, err
	}
	img, err := o.renderer.Render(pageIndex, o.dpi)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page %d for OCR: %w", pageIndex, err)
	}
	if err := o.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("setting OCR image: %w", err)
	}
	boxes, err := o.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR page %d: %w", pageIndex, err)
	}

	tr := transform.New(wPt, hPt, o.dpi)
	spans := make([]model.Span, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" || b.Confidence < minWordConfidence {
			continue
		}
		x0, y0 := tr.ToPoint(b.Box.Min.X, b.Box.Max.Y)
		x1, y1 := tr.ToPoint(b.Box.Max.X, b.Box.Min.Y)
		r, err := model.NewRect(x0, y0, x1, y1)
		if err != nil {
			continue
		}
		spans = append(spans, model.Span{Text: word, BBox: r, PageIndex: pageIndex})
	}
	return spans, nil
}
