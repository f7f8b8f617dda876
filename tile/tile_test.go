package tile

import (
	"reflect"
	"testing"

	"github.com/tsawler/formula/model"
)

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestOrigins(t *testing.T) {
	tests := []struct {
		name              string
		dim, size, stride int
		want              []int
	}{
		{"exact multiple", 1024, 512, 512, []int{0, 512}},
		{"overlapping stride", 1024, 512, 256, []int{0, 256, 512}},
		{"gap forces flush tile", 1000, 512, 256, []int{0, 256, 488}},
		{"dimension equals size", 512, 512, 512, []int{0}},
		{"dimension smaller than size", 300, 512, 256, []int{0}},
		{"one pixel", 1, 512, 512, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Origins(tt.dim, tt.size, tt.stride)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Origins(%d,%d,%d) = %v, want %v", tt.dim, tt.size, tt.stride, got, tt.want)
			}
		})
	}
}

// Tile coverage: the union of generated tile boxes must equal the full image
// with no gaps, for dimensions that are and are not multiples of the stride.
func TestTileCoverage(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"exact grid", 1024, 1024},
		{"ragged width", 1000, 1024},
		{"ragged both", 1000, 1250},
		{"smaller than tile", 300, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TileSize = 512
			cfg.Stride = 256
			cfg.KeepEmptyProb = 1 // keep everything so coverage is observable
			e := mustEngine(t, cfg)

			covered := make([][]bool, tt.h)
			for y := range covered {
				covered[y] = make([]bool, tt.w)
			}
			for _, tile := range e.Tiles(tt.w, tt.h, nil) {
				if tile.Box.X0 < 0 || tile.Box.Y0 < 0 ||
					tile.Box.X1 > float64(tt.w) || tile.Box.Y1 > float64(tt.h) {
					t.Fatalf("tile %+v exceeds image bounds %dx%d", tile.Box, tt.w, tt.h)
				}
				for y := int(tile.Box.Y0); y < int(tile.Box.Y1); y++ {
					for x := int(tile.Box.X0); x < int(tile.Box.X1); x++ {
						covered[y][x] = true
					}
				}
			}
			for y := range covered {
				for x := range covered[y] {
					if !covered[y][x] {
						t.Fatalf("pixel (%d,%d) not covered by any tile", x, y)
					}
				}
			}
		})
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	contained := Annotation{Box: model.Rect{X0: 10, Y0: 10, X1: 60, Y1: 40}, CategoryID: 1}
	outside := Annotation{Box: model.Rect{X0: 2000, Y0: 2000, X1: 2060, Y1: 2040}, CategoryID: 1}

	for _, frac := range []float64{0.01, 0.25, 0.5, 0.99, 1.0} {
		cfg := DefaultConfig()
		cfg.TileSize = 512
		cfg.Stride = 512
		cfg.MinAreaFrac = frac
		cfg.KeepEmptyProb = 0
		e := mustEngine(t, cfg)

		tiles := e.Tiles(512, 512, []Annotation{contained})
		if len(tiles) != 1 || len(tiles[0].Annotations) != 1 {
			t.Errorf("frac %v: fully contained annotation not retained: %+v", frac, tiles)
		}

		e = mustEngine(t, cfg)
		if tiles := e.Tiles(512, 512, []Annotation{outside}); len(tiles) != 0 {
			t.Errorf("frac %v: zero-intersection annotation retained: %+v", frac, tiles)
		}
	}
}

func TestAnnotationRebasedToTileOrigin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 512
	cfg.Stride = 512
	cfg.KeepEmptyProb = 0
	e := mustEngine(t, cfg)

	ann := Annotation{Box: model.Rect{X0: 600, Y0: 520, X1: 700, Y1: 580}, CategoryID: 2}
	tiles := e.Tiles(1024, 1024, []Annotation{ann})

	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}
	tile := tiles[0]
	if tile.Box != (model.Rect{X0: 512, Y0: 512, X1: 1024, Y1: 1024}) {
		t.Fatalf("unexpected tile box %+v", tile.Box)
	}
	want := model.Rect{X0: 88, Y0: 8, X1: 188, Y1: 68}
	if tile.Annotations[0].Box != want {
		t.Errorf("rebased box = %+v, want %+v", tile.Annotations[0].Box, want)
	}
	if tile.Annotations[0].CategoryID != 2 {
		t.Errorf("category = %d, want 2", tile.Annotations[0].CategoryID)
	}
}

// A box straddling two adjacent tiles, each side meeting the threshold, must
// appear as two independent clipped copies.
func TestStraddlingAnnotationDuplicates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 512
	cfg.Stride = 512
	cfg.MinAreaFrac = 0.25
	cfg.KeepEmptyProb = 0
	e := mustEngine(t, cfg)

	// Centered on the vertical boundary at x=512: half in each tile.
	ann := Annotation{Box: model.Rect{X0: 472, Y0: 100, X1: 552, Y1: 160}, CategoryID: 1}
	tiles := e.Tiles(1024, 512, []Annotation{ann})

	if len(tiles) != 2 {
		t.Fatalf("got %d tiles with annotations, want 2", len(tiles))
	}
	left, right := tiles[0], tiles[1]
	if len(left.Annotations) != 1 || len(right.Annotations) != 1 {
		t.Fatalf("each tile should retain one clipped copy: %+v", tiles)
	}
	if left.Index == right.Index {
		t.Error("tiles must have distinct indices")
	}
	lb, rb := left.Annotations[0].Box, right.Annotations[0].Box
	if lb == rb {
		t.Errorf("clipped copies should differ, both = %+v", lb)
	}
	if want := (model.Rect{X0: 472, Y0: 100, X1: 512, Y1: 160}); lb != want {
		t.Errorf("left clip = %+v, want %+v", lb, want)
	}
	if want := (model.Rect{X0: 0, Y0: 100, X1: 40, Y1: 160}); rb != want {
		t.Errorf("right clip = %+v, want %+v", rb, want)
	}
}

func TestNonPositiveAreaAnnotationRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 512
	cfg.Stride = 512
	cfg.KeepEmptyProb = 0
	e := mustEngine(t, cfg)

	degenerate := Annotation{Box: model.Rect{X0: 100, Y0: 100, X1: 100, Y1: 200}, CategoryID: 1}
	if tiles := e.Tiles(512, 512, []Annotation{degenerate}); len(tiles) != 0 {
		t.Errorf("degenerate annotation retained: %+v", tiles)
	}
}

func TestNegativeSamplingDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 256
	cfg.Stride = 128
	cfg.KeepEmptyProb = 0.3
	cfg.Seed = 42

	run := func() []model.Rect {
		e := mustEngine(t, cfg)
		var boxes []model.Rect
		for _, tile := range e.Tiles(1024, 768, nil) {
			boxes = append(boxes, tile.Box)
		}
		return boxes
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different retained tiles:\n%v\n%v", first, second)
	}
}

func TestKeepEmptyProbExtremes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 512
	cfg.Stride = 512

	cfg.KeepEmptyProb = 0
	e := mustEngine(t, cfg)
	if tiles := e.Tiles(1024, 1024, nil); len(tiles) != 0 {
		t.Errorf("prob 0 retained empty tiles: %d", len(tiles))
	}

	cfg.KeepEmptyProb = 1
	e = mustEngine(t, cfg)
	if tiles := e.Tiles(1024, 1024, nil); len(tiles) != 4 {
		t.Errorf("prob 1 retained %d tiles, want 4", len(tiles))
	}
}

func TestTileIndicesSequential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 512
	cfg.Stride = 512
	cfg.KeepEmptyProb = 1
	e := mustEngine(t, cfg)

	tiles := e.Tiles(1024, 1024, nil)
	for i, tile := range tiles {
		if tile.Index != i {
			t.Errorf("tile %d has index %d", i, tile.Index)
		}
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"zero stride", func(c *Config) { c.Stride = 0 }},
		{"negative area frac", func(c *Config) { c.MinAreaFrac = -0.1 }},
		{"area frac above one", func(c *Config) { c.MinAreaFrac = 1.5 }},
		{"negative keep prob", func(c *Config) { c.KeepEmptyProb = -0.1 }},
		{"keep prob above one", func(c *Config) { c.KeepEmptyProb = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			if _, err := NewEngine(cfg); err == nil {
				t.Error("NewEngine() accepted invalid config")
			}
		})
	}
}
