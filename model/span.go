package model

// Span represents a word-level text fragment extracted from a page, with its
// bounding box in point space. Spans are produced by a text-layer or OCR
// extractor and consumed read-only by the detector. The producer does not
// guarantee corner ordering; consumers normalize with NormalizedRect before
// relying on it.
type Span struct {
	Text      string `json:"text"`
	BBox      Rect   `json:"bbox_pdf"`
	PageIndex int    `json:"page_index"`
}

// NewSpan creates a span with a normalized bounding box.
func NewSpan(text string, pageIndex int, x0, y0, x1, y1 float64) Span {
	return Span{
		Text:      text,
		BBox:      NormalizedRect(x0, y0, x1, y1),
		PageIndex: pageIndex,
	}
}

// Normalize returns a copy of the span with sorted bounding-box corners.
func (s Span) Normalize() Span {
	s.BBox = NormalizedRect(s.BBox.X0, s.BBox.Y0, s.BBox.X1, s.BBox.Y1)
	return s
}

// Candidate represents a line group hypothesized to be a displayed equation.
// The bounding box is the point-space union of the member spans, the text is
// their left-to-right concatenation, and the score combines mathiness with a
// centering bonus. Candidates are ephemeral: they are produced fresh per page
// and persisted only by the surrounding driver.
type Candidate struct {
	Text  string  `json:"text"`
	BBox  Rect    `json:"bbox_pdf"`
	Score float64 `json:"score"`
}
