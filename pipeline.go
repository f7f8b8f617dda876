package formula

import (
	"context"
	"fmt"

	"github.com/tsawler/formula/dataset"
	"github.com/tsawler/formula/detect"
	"github.com/tsawler/formula/extract"
	"github.com/tsawler/formula/model"
	"github.com/tsawler/formula/render"
)

// PageCandidates holds the surviving candidates of one page.
type PageCandidates struct {
	Page       int
	Candidates []model.Candidate
}

// Pipeline provides a fluent interface for mining equation candidates from a
// document. Each configuration method returns a new Pipeline instance,
// making chains safe to fork and reuse.
type Pipeline struct {
	// Source
	filename string

	// Lifecycle
	doc       *render.Document
	ownsDoc   bool
	docOpened bool

	// Configuration
	options pipelineOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Pipeline with copied options.
func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		filename:  p.filename,
		doc:       p.doc,
		ownsDoc:   p.ownsDoc,
		docOpened: p.docOpened,
		options:   p.options.clone(),
		err:       p.err,
	}
}

// DPI sets the rasterization resolution used for rendering and OCR.
func (p *Pipeline) DPI(dpi int) *Pipeline {
	next := p.clone()
	if dpi < 1 {
		next.err = fmt.Errorf("dpi must be positive, got %d", dpi)
		return next
	}
	next.options.dpi = dpi
	return next
}

// MinScore sets the score cutoff a candidate must reach to be reported by
// the terminal operations. The default of 0.6 favors precision.
func (p *Pipeline) MinScore(score float64) *Pipeline {
	next := p.clone()
	next.options.minScore = score
	return next
}

// DetectConfig replaces the detector's heuristic configuration.
func (p *Pipeline) DetectConfig(cfg detect.Config) *Pipeline {
	next := p.clone()
	next.options.detect = cfg
	return next
}

// SpansFrom sets a JSON Lines span file as the primary span source.
func (p *Pipeline) SpansFrom(path string) *Pipeline {
	next := p.clone()
	next.options.spanFile = path
	return next
}

// WithOCR enables the OCR span source. Without a span file it becomes the
// only source; with one it backs up pages that yield no spans. Requires a
// build with the ocr tag, otherwise terminal operations return
// extract.ErrOCRNotEnabled.
func (p *Pipeline) WithOCR() *Pipeline {
	next := p.clone()
	next.options.ocr = true
	return next
}

// ensureDoc opens the document if not already open.
func (p *Pipeline) ensureDoc() error {
	if p.docOpened {
		return nil
	}
	if p.filename == "" {
		return fmt.Errorf("no filename specified")
	}
	doc, err := render.Open(p.filename)
	if err != nil {
		return err
	}
	p.doc = doc
	p.ownsDoc = true
	p.docOpened = true
	return nil
}

// Close releases the document if the pipeline owns it. It is safe to call
// Close multiple times.
func (p *Pipeline) Close() error {
	if p.ownsDoc && p.doc != nil {
		err := p.doc.Close()
		p.doc = nil
		p.ownsDoc = false
		return err
	}
	return nil
}

// PageCount opens the document and returns its page count.
func (p *Pipeline) PageCount() (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	if err := p.ensureDoc(); err != nil {
		return 0, err
	}
	defer p.Close()
	return p.doc.PageCount(), nil
}

// spanSource assembles the configured span source chain. The returned
// closer releases OCR resources and may be nil.
func (p *Pipeline) spanSource() (extract.Source, func() error, error) {
	var file extract.Source
	if p.options.spanFile != "" {
		fs, err := extract.NewFileSource(p.options.spanFile)
		if err != nil {
			return nil, nil, err
		}
		file = fs
	}

	if !p.options.ocr {
		if file == nil {
			return nil, nil, fmt.Errorf("no span source configured: use SpansFrom or WithOCR")
		}
		return file, nil, nil
	}

	ocr, err := extract.NewOCRSource(p.doc, p.options.dpi)
	if err != nil {
		return nil, nil, err
	}
	if file == nil {
		return ocr, ocr.Close, nil
	}
	return extract.WithFallback(file, ocr), ocr.Close, nil
}

// Candidates mines the whole document and returns, per page, the candidates
// at or above the pipeline's minimum score. Pages without candidates are
// omitted. This is a terminal operation; the document is closed afterwards.
func (p *Pipeline) Candidates() ([]PageCandidates, error) {
	return p.CandidatesContext(context.Background())
}

// CandidatesContext is Candidates with a caller-supplied context, checked
// between pages.
func (p *Pipeline) CandidatesContext(ctx context.Context) ([]PageCandidates, error) {
	if p.err != nil {
		return nil, p.err
	}
	if err := p.ensureDoc(); err != nil {
		return nil, err
	}
	defer p.Close()

	source, closer, err := p.spanSource()
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer()
	}

	detector := detect.New()
	if err := detector.Configure(p.options.detect); err != nil {
		return nil, err
	}

	var result []PageCandidates
	for page := 0; page < p.doc.PageCount(); page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		spans, err := source.PageSpans(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d spans: %w", page, err)
		}
		if len(spans) == 0 {
			continue
		}

		widthPt, _, err := p.doc.PageSize(page)
		if err != nil {
			return nil, err
		}

		var kept []model.Candidate
		for _, c := range detector.FindCandidates(spans, widthPt) {
			if c.Score >= p.options.minScore {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			result = append(result, PageCandidates{Page: page, Candidates: kept})
		}
	}
	return result, nil
}

// Records mines the document and returns one equation record per surviving
// candidate, attributed to docID. This is a terminal operation.
func (p *Pipeline) Records(docID string) ([]dataset.Record, error) {
	pages, err := p.Candidates()
	if err != nil {
		return nil, err
	}

	var records []dataset.Record
	for _, pc := range pages {
		for _, c := range pc.Candidates {
			records = append(records, dataset.NewRecord(docID, c.Text, dataset.PlacedBox{
				Page:  pc.Page,
				BBox:  c.BBox,
				Class: dataset.ClassDisplay,
			}))
		}
	}
	return records, nil
}
