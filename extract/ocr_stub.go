//go:build !ocr

package extract

import (
	"context"
	"errors"
	"image"

	"github.com/tsawler/formula/model"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support. This
// requires Tesseract to be installed; on Ubuntu/Debian:
//
//	apt-get install -y tesseract-ocr libtesseract-dev
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Renderer supplies page rasters and geometry for OCR. *render.Document
// satisfies it.
type Renderer interface {
	PageSize(i int) (widthPt, heightPt float64, err error)
	Render(i, dpi int) (image.Image, error)
}

// OCRSource is a stub that reports OCR as unavailable.
type OCRSource struct{}

// NewOCRSource returns ErrOCRNotEnabled. Rebuild with -tags ocr to enable.
func NewOCRSource(renderer Renderer, dpi int) (*OCRSource, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub source.
func (o *OCRSource) Close() error {
	return nil
}

// PageSpans returns ErrOCRNotEnabled.
func (o *OCRSource) PageSpans(ctx context.Context, pageIndex int) ([]model.Span, error) {
	return nil, ErrOCRNotEnabled
}
