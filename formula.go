// Package formula provides a fluent API for mining equation candidates from
// PDF papers and preparing detector training data from them.
//
// Basic usage:
//
//	candidates, err := formula.Open("paper.pdf").
//	    SpansFrom("paper_spans.jsonl").
//	    Candidates()
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	records, err := formula.Open("paper.pdf").
//	    DPI(200).
//	    MinScore(0.6).
//	    WithOCR().
//	    Records("smith2024")
//
// The lower-level packages (detect, tile, coco, dataset) are available
// directly when more control is needed.
package formula

import (
	"github.com/tsawler/formula/render"
)

// Open prepares a pipeline for a PDF file and returns it for fluent
// configuration. The document is opened lazily by the first terminal
// operation and closed when that operation finishes.
func Open(filename string) *Pipeline {
	return &Pipeline{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromDocument creates a pipeline over an already-opened document. The
// caller keeps ownership of the document and is responsible for closing it.
func FromDocument(doc *render.Document) *Pipeline {
	return &Pipeline{
		filename:  doc.Path(),
		doc:       doc,
		docOpened: true,
		options:   defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := formula.Must(formula.Open("paper.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
