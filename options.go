package formula

import (
	"github.com/tsawler/formula/detect"
	"github.com/tsawler/formula/render"
)

// pipelineOptions holds configuration for candidate mining.
type pipelineOptions struct {
	// Rasterization resolution, also used for OCR renders.
	dpi int

	// Facade-level score cutoff. The detector's own MinScore admits weak
	// candidates for review; this stricter cutoff picks the ones worth
	// recording.
	minScore float64

	// Heuristic knobs passed through to the detector.
	detect detect.Config

	// Span sources. A JSONL span file is the primary source; OCR, when
	// enabled, backs it up on pages with no spans.
	spanFile string
	ocr      bool
}

// defaultOptions returns the default pipeline options.
func defaultOptions() pipelineOptions {
	return pipelineOptions{
		dpi:      render.DefaultDPI,
		minScore: 0.6,
		detect:   detect.DefaultConfig(),
	}
}

// clone creates a copy of pipelineOptions.
func (o pipelineOptions) clone() pipelineOptions {
	return pipelineOptions{
		dpi:      o.dpi,
		minScore: o.minScore,
		detect:   o.detect,
		spanFile: o.spanFile,
		ocr:      o.ocr,
	}
}
