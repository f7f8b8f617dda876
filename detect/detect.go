// Package detect finds likely-equation line groups on a page using lexical
// and geometric heuristics, without any trained model.
//
// The detector clusters word spans into approximate text lines by quantizing
// their vertical position, scores each line's concatenated text for
// "mathiness", adds a bonus for horizontally centered lines (display
// equations are typically centered), and returns the lines above a score
// cutoff, strongest first.
package detect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tsawler/formula/model"
)

// Config holds detector tuning knobs. The defaults are heuristic starting
// points, not a calibrated model; re-tune them against your own corpus.
type Config struct {
	// Vertical bucket width, in points, used to group spans into lines.
	// Spans whose true lines differ by less than this may merge; that is an
	// accepted trade-off of the clustering heuristic.
	BinSize float64 `yaml:"bin_size"`

	// Minimum combined score (mathiness + centering bonus) to keep a line.
	MinScore float64 `yaml:"min_score"`

	// Maximum centering bonus, awarded to a perfectly centered line and
	// decreasing linearly to zero with normalized distance from center.
	CenterBonusCap float64 `yaml:"center_bonus_cap"`

	// Score weight added per recognized math-markup token occurrence.
	HintWeight int `yaml:"hint_weight"`
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		BinSize:        3.0,
		MinScore:       0.1,
		CenterBonusCap: 0.3,
		HintWeight:     3,
	}
}

// Detector scores line groups for equation-likeness. It holds no state
// between pages: detection is purely a function of (spans, page width).
type Detector struct {
	config Config
}

// New creates a detector with the default configuration.
func New() *Detector {
	return &Detector{config: DefaultConfig()}
}

// Configure sets the detector configuration.
func (d *Detector) Configure(config Config) error {
	if config.BinSize <= 0 {
		return fmt.Errorf("detect: bin size must be positive, got %g", config.BinSize)
	}
	if config.HintWeight < 0 {
		return fmt.Errorf("detect: hint weight must be non-negative, got %d", config.HintWeight)
	}
	d.config = config
	return nil
}

// FindCandidates clusters the given spans into line groups and returns the
// groups scoring at or above the configured cutoff, sorted by descending
// score. Empty input yields an empty result, not an error.
func (d *Detector) FindCandidates(spans []model.Span, pageWidth float64) []model.Candidate {
	if len(spans) == 0 {
		return nil
	}

	lines := d.clusterLines(spans)

	var candidates []model.Candidate
	for _, line := range lines {
		bbox, text := unionLine(line)
		score := d.mathiness(text) + d.centerBonus(bbox, pageWidth)
		if score >= d.config.MinScore {
			candidates = append(candidates, model.Candidate{
				Text:  text,
				BBox:  bbox,
				Score: score,
			})
		}
	}

	// Strongest first; ties broken by position so output order is stable.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].BBox.Y1 != candidates[j].BBox.Y1 {
			return candidates[i].BBox.Y1 > candidates[j].BBox.Y1
		}
		return candidates[i].BBox.X0 < candidates[j].BBox.X0
	})

	return candidates
}

// clusterLines groups spans by quantizing the top coordinate of each span's
// bounding box into buckets of BinSize points. This approximates reading-order
// lines without font-metric knowledge.
func (d *Detector) clusterLines(spans []model.Span) [][]model.Span {
	buckets := make(map[float64][]model.Span)
	for _, s := range spans {
		s = s.Normalize()
		key := math.Round(s.BBox.Y1/d.config.BinSize) * d.config.BinSize
		buckets[key] = append(buckets[key], s)
	}

	keys := make([]float64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	lines := make([][]model.Span, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, buckets[k])
	}
	return lines
}

// unionLine computes the bounding-box union of a line's spans and their
// space-joined text in left-to-right order.
func unionLine(line []model.Span) (model.Rect, string) {
	sorted := make([]model.Span, len(line))
	copy(sorted, line)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	bbox := sorted[0].BBox
	texts := make([]string, 0, len(sorted))
	for _, s := range sorted {
		bbox = bbox.Union(s.BBox)
		texts = append(texts, s.Text)
	}
	return bbox, strings.Join(texts, " ")
}

// centerBonus rewards lines whose bounding box is horizontally centered on
// the page. The bonus falls linearly from the configured cap to zero as the
// normalized center distance grows.
func (d *Detector) centerBonus(bbox model.Rect, pageWidth float64) float64 {
	half := pageWidth / 2
	if half < 1 {
		half = 1
	}
	dev := math.Abs(bbox.Center().X-pageWidth/2) / half
	return math.Max(0, d.config.CenterBonusCap-dev)
}
