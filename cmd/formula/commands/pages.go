package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tsawler/formula/dataset"
	"github.com/tsawler/formula/render"
)

var (
	pagesImages string
	pagesOut    string
	pagesRender string
)

var pagesCmd = &cobra.Command{
	Use:   "pages <records.jsonl>",
	Short: "Build a page-level COCO dataset from candidate records",
	Long: `pages converts equation records into page-level COCO annotations over the
rasters in the images directory. With --render, the source PDF is rasterized
into that directory first and its exact page geometry is used for the
point-to-pixel mapping; otherwise geometry is assumed from each raster.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := dataset.ReadRecords(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no records in %s", args[0])
		}

		var geom dataset.PageSizer
		if pagesRender != "" {
			doc, err := render.Open(pagesRender)
			if err != nil {
				return err
			}
			defer doc.Close()
			if err := renderPages(doc, records[0].DocID, pagesImages); err != nil {
				return err
			}
			geom = doc
		}

		assembler := dataset.NewAssembler(log)
		ds, report, err := assembler.BuildPages(records, pagesImages, cfg.DPI, geom)
		if err != nil {
			return err
		}
		for _, s := range report.Skips {
			log.Debug().Str("item", s.Item).Str("reason", s.Reason).Msg("skipped")
		}
		if report.Empty() {
			return fmt.Errorf("no valid inputs: %s", report.Summary())
		}

		if err := ds.WriteFile(pagesOut); err != nil {
			return err
		}
		log.Info().Str("out", pagesOut).Int("images", len(ds.Images)).
			Int("annotations", len(ds.Annotations)).Str("report", report.Summary()).
			Msg("page dataset written")
		return nil
	},
}

// renderPages rasterizes every page of doc into dir under the document's
// page naming convention.
func renderPages(doc *render.Document, docID, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating images directory: %w", err)
	}
	bar := progressbar.Default(int64(doc.PageCount()), "rendering")
	for i := 0; i < doc.PageCount(); i++ {
		img, err := doc.Render(i, cfg.DPI)
		if err != nil {
			return err
		}
		out := filepath.Join(dir, dataset.PageImageName(docID, i))
		if err := imaging.Save(img, out); err != nil {
			return fmt.Errorf("saving page %d: %w", i, err)
		}
		_ = bar.Add(1)
	}
	return bar.Finish()
}

func init() {
	pagesCmd.Flags().StringVar(&pagesImages, "images", "images", "page raster directory")
	pagesCmd.Flags().StringVarP(&pagesOut, "out", "o", "annotations.json", "output COCO file")
	pagesCmd.Flags().StringVar(&pagesRender, "render", "", "PDF to rasterize into the images directory first")
	rootCmd.AddCommand(pagesCmd)
}
