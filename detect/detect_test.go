package detect

import (
	"testing"

	"github.com/tsawler/formula/model"
)

const pageWidth = 612.0

// spansForLine lays words out left to right on one text line.
func spansForLine(t *testing.T, y float64, words ...string) []model.Span {
	t.Helper()
	spans := make([]model.Span, 0, len(words))
	x := 100.0
	for _, w := range words {
		width := float64(len(w)) * 6
		spans = append(spans, model.NewSpan(w, 0, x, y, x+width, y+10))
		x += width + 4
	}
	return spans
}

func TestFindCandidatesEmptyInput(t *testing.T) {
	d := New()
	if got := d.FindCandidates(nil, pageWidth); len(got) != 0 {
		t.Errorf("FindCandidates(nil) = %v, want empty", got)
	}
	if got := d.FindCandidates([]model.Span{}, pageWidth); len(got) != 0 {
		t.Errorf("FindCandidates(empty) = %v, want empty", got)
	}
}

func TestEquationOutscoresProse(t *testing.T) {
	d := New()

	spans := spansForLine(t, 700, "E", "=", "mc^2")
	spans = append(spans, spansForLine(t, 650, "Introduction")...)

	candidates := d.FindCandidates(spans, pageWidth)
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}

	var eqScore, proseScore float64
	var haveEq, haveProse bool
	for _, c := range candidates {
		switch c.Text {
		case "E = mc^2":
			eqScore, haveEq = c.Score, true
		case "Introduction":
			proseScore, haveProse = c.Score, true
		}
	}
	if !haveEq {
		t.Fatal("equation line missing from candidates")
	}
	if haveProse && eqScore <= proseScore {
		t.Errorf("score(%q) = %v, not greater than score(%q) = %v",
			"E = mc^2", eqScore, "Introduction", proseScore)
	}
	if candidates[0].Text != "E = mc^2" {
		t.Errorf("strongest candidate = %q, want the equation line", candidates[0].Text)
	}
}

func TestLineClusteringMergesNearbySpans(t *testing.T) {
	d := New()

	// Two words whose tops differ by less than the bin size must join one line.
	spans := []model.Span{
		model.NewSpan("a", 0, 100, 500, 110, 510),
		model.NewSpan("=", 0, 120, 500.9, 130, 510.9),
		model.NewSpan("b", 0, 140, 499.4, 150, 509.4),
	}

	candidates := d.FindCandidates(spans, pageWidth)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 merged line: %+v", len(candidates), candidates)
	}
	if candidates[0].Text != "a = b" {
		t.Errorf("merged text = %q, want %q", candidates[0].Text, "a = b")
	}

	want := model.Rect{X0: 100, Y0: 499.4, X1: 150, Y1: 510.9}
	if candidates[0].BBox != want {
		t.Errorf("union bbox = %+v, want %+v", candidates[0].BBox, want)
	}
}

func TestTextJoinedLeftToRight(t *testing.T) {
	d := New()

	// Spans supplied out of reading order.
	spans := []model.Span{
		model.NewSpan("mc^2", 0, 140, 700, 170, 710),
		model.NewSpan("E", 0, 100, 700, 106, 710),
		model.NewSpan("=", 0, 120, 700, 126, 710),
	}

	candidates := d.FindCandidates(spans, pageWidth)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Text != "E = mc^2" {
		t.Errorf("text = %q, want %q", candidates[0].Text, "E = mc^2")
	}
}

func TestCutoffFiltersWeakLines(t *testing.T) {
	d := New()
	cfg := DefaultConfig()
	cfg.MinScore = 0.5
	if err := d.Configure(cfg); err != nil {
		t.Fatal(err)
	}

	// An off-center prose line scores well under 0.5.
	spans := []model.Span{model.NewSpan("ordinary", 0, 20, 700, 80, 710)}
	if got := d.FindCandidates(spans, pageWidth); len(got) != 0 {
		t.Errorf("weak line survived cutoff: %+v", got)
	}
}

func TestNoAlphabeticNoGlyphsDoesNotPanic(t *testing.T) {
	d := New()
	spans := []model.Span{model.NewSpan("1234", 0, 20, 700, 60, 710)}
	// Scores near zero and is filtered or kept; either way, no crash.
	_ = d.FindCandidates(spans, pageWidth)
}

func TestZeroPageWidthGuarded(t *testing.T) {
	d := New()
	spans := spansForLine(t, 700, "E", "=", "mc^2")
	// Degenerate page geometry must not divide by zero.
	_ = d.FindCandidates(spans, 0)
}

func TestConfigureRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero bin size", func(c *Config) { c.BinSize = 0 }},
		{"negative bin size", func(c *Config) { c.BinSize = -1 }},
		{"negative hint weight", func(c *Config) { c.HintWeight = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			if err := New().Configure(cfg); err == nil {
				t.Error("Configure() accepted invalid config")
			}
		})
	}
}

func TestDetectorIsStateless(t *testing.T) {
	d := New()
	spans := spansForLine(t, 700, "α", "+", "β")

	first := d.FindCandidates(spans, pageWidth)
	second := d.FindCandidates(spans, pageWidth)

	if len(first) != len(second) {
		t.Fatalf("repeated calls disagree: %d vs %d candidates", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("candidate %d differs across calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}
