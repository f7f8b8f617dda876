// Package tile partitions page rasters into overlapping fixed-size tiles and
// re-derives, clips, and rebases annotation boxes per tile.
//
// Tiling is deterministic for a given configuration: tile origins follow a
// fixed stride grid with a final flush tile guaranteeing full coverage, and
// the negative-sampling decision for annotation-free tiles consumes exactly
// one pseudo-random draw per generated tile, in row-major generation order,
// from a source seeded explicitly. Running the engine twice over the same
// input with the same seed retains the identical set of tiles.
package tile

import (
	"fmt"
	"math/rand"

	"github.com/tsawler/formula/model"
)

// Config holds tiling parameters.
type Config struct {
	// Tile edge length in pixels.
	TileSize int `yaml:"tile_size"`

	// Distance between tile origins in pixels. A stride smaller than the
	// tile size produces overlapping tiles.
	Stride int `yaml:"stride"`

	// Minimum fraction of an annotation's original area that must survive
	// clipping into a tile for the annotation to be retained in that tile.
	MinAreaFrac float64 `yaml:"min_area_frac"`

	// Probability of keeping a tile that retained no annotations, so
	// background-only tiles appear at a controlled rate.
	KeepEmptyProb float64 `yaml:"keep_empty_prob"`

	// Seed for the negative-sampling draws.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the default tiling configuration.
func DefaultConfig() Config {
	return Config{
		TileSize:      1024,
		Stride:        512,
		MinAreaFrac:   0.25,
		KeepEmptyProb: 0.05,
		Seed:          0,
	}
}

// Annotation is a pixel-space box with a category, either page-level (input)
// or tile-relative (output).
type Annotation struct {
	Box        model.Rect
	CategoryID int
}

// Tile is one retained crop of a source raster. Box is the tile's pixel
// bounds within the source image; Annotations are expressed relative to the
// tile's own origin. Tiles are immutable once created.
type Tile struct {
	// Index is the per-page sequence number of the tile among retained
	// tiles. Dataset-global identifiers are assigned later, at assembly.
	Index int

	Box model.Rect

	Annotations []Annotation
}

// Engine generates tiles for page rasters. It owns the pseudo-random source
// for negative sampling and is therefore not safe for concurrent use; create
// one engine per worker (each seeded explicitly) when tiling in parallel.
type Engine struct {
	config Config
	rng    *rand.Rand
}

// NewEngine creates a tiling engine, validating the configuration.
func NewEngine(config Config) (*Engine, error) {
	if config.TileSize <= 0 {
		return nil, fmt.Errorf("tile: tile size must be positive, got %d", config.TileSize)
	}
	if config.Stride <= 0 {
		return nil, fmt.Errorf("tile: stride must be positive, got %d", config.Stride)
	}
	if config.MinAreaFrac < 0 || config.MinAreaFrac > 1 {
		return nil, fmt.Errorf("tile: min area fraction must be in [0,1], got %g", config.MinAreaFrac)
	}
	if config.KeepEmptyProb < 0 || config.KeepEmptyProb > 1 {
		return nil, fmt.Errorf("tile: keep-empty probability must be in [0,1], got %g", config.KeepEmptyProb)
	}
	return &Engine{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Origins returns the tile origins along one axis of the given length:
// 0, stride, 2*stride, ... while a full tile fits, plus a final origin flush
// against the far edge (clamped to zero) whenever the regular grid would
// leave a gap. A dimension smaller than the tile size yields a single
// clamped origin.
func Origins(dim, size, stride int) []int {
	var origins []int
	for o := 0; o+size <= dim; o += stride {
		origins = append(origins, o)
	}
	if len(origins) == 0 || origins[len(origins)-1]+size < dim {
		last := dim - size
		if last < 0 {
			last = 0
		}
		origins = append(origins, last)
	}
	return origins
}

// Tiles partitions a width x height raster into overlapping tiles and
// returns the retained ones with tile-relative annotation copies. An
// annotation straddling several tiles is retained independently in every
// tile meeting the area-fraction threshold.
func (e *Engine) Tiles(width, height int, annotations []Annotation) []Tile {
	size := e.config.TileSize
	bounds := model.Rect{X0: 0, Y0: 0, X1: float64(width), Y1: float64(height)}

	var tiles []Tile
	for _, y0 := range Origins(height, size, e.config.Stride) {
		for _, x0 := range Origins(width, size, e.config.Stride) {
			box := model.Rect{
				X0: float64(x0),
				Y0: float64(y0),
				X1: float64(x0 + size),
				Y1: float64(y0 + size),
			}.Clip(bounds)

			kept := e.clipAnnotations(box, annotations)

			// One draw per generated tile keeps the random stream position
			// independent of annotation content.
			draw := e.rng.Float64()
			if len(kept) == 0 && draw >= e.config.KeepEmptyProb {
				continue
			}

			tiles = append(tiles, Tile{
				Index:       len(tiles),
				Box:         box,
				Annotations: kept,
			})
		}
	}
	return tiles
}

// clipAnnotations returns tile-relative copies of the annotations whose
// intersection with the tile box covers at least MinAreaFrac of the
// annotation's original area. Annotations with non-positive area are
// rejected before the ratio is computed.
func (e *Engine) clipAnnotations(box model.Rect, annotations []Annotation) []Annotation {
	var kept []Annotation
	for _, ann := range annotations {
		area := ann.Box.Area()
		if area <= 0 {
			continue
		}
		inter := ann.Box.Intersection(box)
		if !inter.IsValid() {
			continue
		}
		if inter.Area()/area < e.config.MinAreaFrac {
			continue
		}
		kept = append(kept, Annotation{
			Box:        inter.Translate(-box.X0, -box.Y0),
			CategoryID: ann.CategoryID,
		})
	}
	return kept
}
