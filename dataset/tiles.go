package dataset

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/tsawler/formula/coco"
	"github.com/tsawler/formula/tile"
)

// BuildTiles cuts every image of a page-level dataset into overlapping tiles,
// writes the crops to outDir, and returns the tile-level dataset. Source
// rasters are read from imagesDir by the page dataset's file names; crops are
// named per TileImageName from the source stem.
//
// A single engine processes pages sequentially in ascending image-id order,
// so the negative-sampling stream, tile ids, and annotation ids are fully
// determined by the input dataset and the tiling seed. Missing or unreadable
// rasters are skipped and reported; Processed counts written crops.
func (a *Assembler) BuildTiles(pages *coco.Dataset, imagesDir, outDir string, cfg tile.Config) (*coco.Dataset, *Report, error) {
	engine, err := tile.NewEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureDir(outDir); err != nil {
		return nil, nil, err
	}

	builder := coco.NewBuilder("equation detector tile-level dataset", pages.Categories)
	report := &Report{}
	byImage := pages.AnnotationsByImage()

	images := make([]coco.Image, len(pages.Images))
	copy(images, pages.Images)
	sort.Slice(images, func(i, j int) bool { return images[i].ID < images[j].ID })

	for _, img := range images {
		src, err := imaging.Open(filepath.Join(imagesDir, img.FileName))
		if err != nil {
			a.log.Warn().Str("image", img.FileName).Err(err).Msg("page raster unavailable, skipping")
			report.skip(img.FileName, "page raster unavailable")
			continue
		}
		bounds := src.Bounds()

		var anns []tile.Annotation
		for _, pa := range byImage[img.ID] {
			anns = append(anns, tile.Annotation{Box: pa.Rect(), CategoryID: pa.CategoryID})
		}

		stem := strings.TrimSuffix(img.FileName, filepath.Ext(img.FileName))
		for _, t := range engine.Tiles(bounds.Dx(), bounds.Dy(), anns) {
			crop := imaging.Crop(src, image.Rect(
				int(t.Box.X0), int(t.Box.Y0), int(t.Box.X1), int(t.Box.Y1)))

			name := TileImageName(stem, t.Index)
			if err := imaging.Save(crop, filepath.Join(outDir, name)); err != nil {
				a.log.Warn().Str("tile", name).Err(err).Msg("failed to save crop, skipping")
				report.skip(name, "crop save failed")
				continue
			}

			imageID := builder.AddImage(name, crop.Bounds().Dx(), crop.Bounds().Dy())
			for _, ann := range t.Annotations {
				if _, err := builder.AddAnnotation(imageID, ann.CategoryID, ann.Box); err != nil {
					report.skip(fmt.Sprintf("%s annotation", name), "invalid clipped box")
				}
			}
			report.addProcessed()
		}
	}

	return builder.Dataset(), report, nil
}
