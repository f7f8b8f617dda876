// Package extract produces text spans with point-space bounding boxes for
// document pages. Spans are the input to candidate detection, so every
// source in this package reports geometry in point space with a bottom-left
// origin.
//
// Two sources are provided: FileSource reads spans exported by an external
// layout pass as JSON Lines, and OCRSource (behind the "ocr" build tag)
// recovers word boxes from page rasters via Tesseract. WithFallback chains
// a primary source with a backup for pages where the primary comes up empty,
// which is the usual arrangement for scanned documents.
package extract

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tsawler/formula/model"
)

// Source yields the text spans of a single page.
type Source interface {
	// PageSpans returns the spans of the 0-based page index. A page with no
	// recoverable text returns an empty slice, not an error.
	PageSpans(ctx context.Context, pageIndex int) ([]model.Span, error)
}

// FileSource serves spans loaded from a JSON Lines file, one span object per
// line. Spans are grouped by page at load time, so per-page lookups are cheap.
type FileSource struct {
	byPage map[int][]model.Span
}

// NewFileSource loads a span file. Each line must decode as a model.Span;
// blank lines are skipped. Span boxes are normalized on load.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening span file: %w", err)
	}
	defer f.Close()

	byPage := make(map[int][]model.Span)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var s model.Span
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("span file %s line %d: %w", path, lineNo, err)
		}
		s = s.Normalize()
		byPage[s.PageIndex] = append(byPage[s.PageIndex], s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading span file %s: %w", path, err)
	}
	return &FileSource{byPage: byPage}, nil
}

// PageSpans returns the spans recorded for a page, in reading order
// (top of page first, then left to right).
func (fs *FileSource) PageSpans(_ context.Context, pageIndex int) ([]model.Span, error) {
	spans := fs.byPage[pageIndex]
	out := make([]model.Span, len(spans))
	copy(out, spans)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BBox.Y1 != out[j].BBox.Y1 {
			return out[i].BBox.Y1 > out[j].BBox.Y1
		}
		return out[i].BBox.X0 < out[j].BBox.X0
	})
	return out, nil
}

// Pages returns the page indices the file holds spans for, ascending.
func (fs *FileSource) Pages() []int {
	pages := make([]int, 0, len(fs.byPage))
	for p := range fs.byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// fallbackSource consults a backup source when the primary yields nothing.
type fallbackSource struct {
	primary Source
	backup  Source
}

// WithFallback wraps primary so that pages where it returns no spans (or an
// error) are retried against backup. This covers scanned documents whose
// text layer is empty.
func WithFallback(primary, backup Source) Source {
	return &fallbackSource{primary: primary, backup: backup}
}

func (f *fallbackSource) PageSpans(ctx context.Context, pageIndex int) ([]model.Span, error) {
	spans, err := f.primary.PageSpans(ctx, pageIndex)
	if err == nil && len(spans) > 0 {
		return spans, nil
	}
	return f.backup.PageSpans(ctx, pageIndex)
}
