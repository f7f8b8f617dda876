// Package render wraps the MuPDF-backed go-fitz bindings to provide the page
// geometry the pipeline depends on: point-space page dimensions and page
// rasters at a chosen DPI.
//
// The rest of the pipeline only sees page sizes and image dimensions, so a
// different rendering backend can be substituted behind the same surface.
package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/formula/transform"
)

// DefaultDPI is the rasterization resolution used when none is specified.
const DefaultDPI = 300

// Document is an open document backed by go-fitz. It must be closed when no
// longer needed to release the underlying MuPDF resources.
type Document struct {
	path  string
	doc   *fitz.Document
	pages int
}

// Open opens a PDF document, validating the path and that the document has
// at least one page.
func Open(path string) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("document path cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a document: %s", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return nil, fmt.Errorf("unsupported document type %q (want .pdf)", ext)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	pages := doc.NumPage()
	if pages == 0 {
		doc.Close()
		return nil, fmt.Errorf("document %s has zero pages", path)
	}

	return &Document{path: path, doc: doc, pages: pages}, nil
}

// Close releases the document resources.
func (d *Document) Close() error {
	if d.doc != nil {
		err := d.doc.Close()
		d.doc = nil
		return err
	}
	return nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// checkPage validates a 0-based page index. An out-of-range index is an
// error for that page only; callers decide whether to continue the batch.
func (d *Document) checkPage(i int) error {
	if i < 0 || i >= d.pages {
		return fmt.Errorf("page index %d out of range [0,%d)", i, d.pages)
	}
	return nil
}

// PageSize returns the width and height of page i in points.
func (d *Document) PageSize(i int) (widthPt, heightPt float64, err error) {
	if err := d.checkPage(i); err != nil {
		return 0, 0, err
	}
	bound, err := d.doc.Bound(i)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d bounds: %w", i, err)
	}
	return float64(bound.Dx()), float64(bound.Dy()), nil
}

// Transform returns the exact point-to-pixel transform for page i at the
// given DPI.
func (d *Document) Transform(i, dpi int) (transform.Transform, error) {
	w, h, err := d.PageSize(i)
	if err != nil {
		return transform.Transform{}, err
	}
	return transform.New(w, h, dpi), nil
}

// Render rasterizes page i at the given DPI.
func (d *Document) Render(i, dpi int) (image.Image, error) {
	if err := d.checkPage(i); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(i, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", i, err)
	}
	return img, nil
}

// PageFileName returns the canonical raster file name for a 0-based page
// index: page_0000.png, page_0001.png, ...
func PageFileName(i int) string {
	return fmt.Sprintf("page_%04d.png", i)
}

// RenderAll rasterizes every page into dir at the given DPI, using up to
// workers goroutines for encoding, and returns the written file paths in
// page order. File names are deterministic regardless of worker scheduling.
func (d *Document) RenderAll(ctx context.Context, dir string, dpi, workers int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating render directory: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	paths := make([]string, d.pages)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < d.pages; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			img, err := d.Render(i, dpi)
			if err != nil {
				return err
			}
			out := filepath.Join(dir, PageFileName(i))
			if err := imaging.Save(img, out); err != nil {
				return fmt.Errorf("saving page %d: %w", i, err)
			}
			paths[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
