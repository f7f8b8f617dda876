package dataset

import (
	"fmt"
	"image"
	"os"

	// Raster codecs the pipeline may encounter. PNG is the canonical page
	// format; the rest cover externally supplied scans.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// ImageSize reads only the header of an image file and returns its pixel
// dimensions without decoding the raster.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// PageImageName returns the canonical raster name for a document page:
// <doc>_page_0000.png. The document id is recoverable from the name, which
// the train/val splitter depends on.
func PageImageName(docID string, page int) string {
	return fmt.Sprintf("%s_page_%04d.png", docID, page)
}

// TileImageName returns the crop name for a tile of a page raster, derived
// from the source raster's stem: <stem>_tile_0000.png.
func TileImageName(stem string, index int) string {
	return fmt.Sprintf("%s_tile_%04d.png", stem, index)
}
