package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tsawler/formula/coco"
	"github.com/tsawler/formula/model"
	"github.com/tsawler/formula/transform"
)

// PageSizer reports point-space page geometry. *render.Document satisfies
// it. When no sizer is available the assembler falls back to assumed US
// Letter geometry derived from the raster.
type PageSizer interface {
	PageSize(i int) (widthPt, heightPt float64, err error)
}

// Assembler builds COCO datasets from records and page rasters. It is cheap
// to construct; state lives in the per-call builders.
type Assembler struct {
	log zerolog.Logger
}

// NewAssembler creates an assembler logging skips to the given logger.
func NewAssembler(log zerolog.Logger) *Assembler {
	return &Assembler{log: log}
}

// BuildPages converts equation records into a page-level COCO dataset over
// the rasters in imagesDir, named per PageImageName. Point boxes are mapped
// to pixels with the exact page geometry when geom is non-nil (records from
// a single open document), otherwise with the assumed-geometry fallback
// derived from each raster.
//
// Missing or unreadable rasters and boxes that collapse under clipping are
// skipped, logged, and recorded in the report; the batch always runs to
// completion. Processed counts annotations that made it into the dataset.
func (a *Assembler) BuildPages(records []Record, imagesDir string, dpi int, geom PageSizer) (*coco.Dataset, *Report, error) {
	builder := coco.NewBuilder("equation detector page-level dataset", coco.DefaultCategories())
	report := &Report{}

	type pageRaster struct {
		width, height int
		bad           bool
	}
	rasters := make(map[string]pageRaster)

	for _, rec := range records {
		for _, box := range rec.Boxes {
			name := PageImageName(rec.DocID, box.Page)
			item := fmt.Sprintf("%s eq %s", name, rec.EqUID)

			pr, seen := rasters[name]
			if !seen {
				w, h, err := ImageSize(filepath.Join(imagesDir, name))
				pr = pageRaster{width: w, height: h, bad: err != nil}
				rasters[name] = pr
				if pr.bad {
					a.log.Warn().Str("image", name).Err(err).Msg("page raster unavailable, skipping its boxes")
				}
			}
			if pr.bad {
				report.skip(item, "page raster unavailable")
				continue
			}

			var tr transform.Transform
			if geom != nil {
				wPt, hPt, err := geom.PageSize(box.Page)
				if err != nil {
					report.skip(item, "page geometry unavailable")
					continue
				}
				tr = transform.New(wPt, hPt, dpi)
			} else {
				tr = transform.FromRaster(pr.width, pr.height)
			}

			pixel := tr.RectToPixels(box.BBox)
			pixel = pixel.Clip(model.NormalizedRect(0, 0, float64(pr.width), float64(pr.height)))
			if !pixel.IsValid() {
				report.skip(item, "box collapsed under clipping")
				continue
			}

			imageID := builder.AddImage(name, pr.width, pr.height)
			categoryID := builder.CategoryID(categoryName(box.Class))
			if _, err := builder.AddAnnotation(imageID, categoryID, pixel); err != nil {
				report.skip(item, "invalid pixel box")
				continue
			}
			report.addProcessed()
		}
	}

	return builder.Dataset(), report, nil
}

// categoryName maps a record box class to a COCO category name, defaulting
// to display equations.
func categoryName(class string) string {
	if class == ClassInline {
		return ClassInline
	}
	return ClassDisplay
}
