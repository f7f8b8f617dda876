package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/formula/coco"
	"github.com/tsawler/formula/dataset"
)

var (
	tilesImages  string
	tilesOutDir  string
	tilesOut     string
	tileSize     int
	tileStride   int
	tileMinArea  float64
	tileKeepProb float64
	tileSeed     int64
)

var tilesCmd = &cobra.Command{
	Use:   "tiles <annotations.json>",
	Short: "Cut a page-level COCO dataset into overlapping tiles",
	Long: `tiles crops every page raster of a COCO dataset into an overlapping grid,
clips and rebases the annotations into each tile, samples a fraction of
annotation-free tiles as negatives, and writes the crops plus a tile-level
COCO file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := coco.Load(args[0])
		if err != nil {
			return err
		}

		tileCfg := cfg.Tile
		flags := cmd.Flags()
		if flags.Changed("tile-size") {
			tileCfg.TileSize = tileSize
		}
		if flags.Changed("stride") {
			tileCfg.Stride = tileStride
		}
		if flags.Changed("min-area-frac") {
			tileCfg.MinAreaFrac = tileMinArea
		}
		if flags.Changed("keep-empty-prob") {
			tileCfg.KeepEmptyProb = tileKeepProb
		}
		if flags.Changed("seed") {
			tileCfg.Seed = tileSeed
		}

		assembler := dataset.NewAssembler(log)
		ds, report, err := assembler.BuildTiles(pages, tilesImages, tilesOutDir, tileCfg)
		if err != nil {
			return err
		}
		for _, s := range report.Skips {
			log.Debug().Str("item", s.Item).Str("reason", s.Reason).Msg("skipped")
		}
		if report.Empty() {
			return fmt.Errorf("no valid inputs: %s", report.Summary())
		}

		if err := ds.WriteFile(tilesOut); err != nil {
			return err
		}
		log.Info().Str("out", tilesOut).Int("tiles", len(ds.Images)).
			Int("annotations", len(ds.Annotations)).Str("report", report.Summary()).
			Msg("tile dataset written")
		return nil
	},
}

func init() {
	tilesCmd.Flags().StringVar(&tilesImages, "images", "images", "page raster directory")
	tilesCmd.Flags().StringVar(&tilesOutDir, "out-dir", "tiles", "tile crop output directory")
	tilesCmd.Flags().StringVarP(&tilesOut, "out", "o", "annotations_tiles.json", "output COCO file")
	tilesCmd.Flags().IntVar(&tileSize, "tile-size", 1024, "square tile edge in pixels")
	tilesCmd.Flags().IntVar(&tileStride, "stride", 512, "grid stride in pixels")
	tilesCmd.Flags().Float64Var(&tileMinArea, "min-area-frac", 0.25, "minimum retained fraction of an annotation's area")
	tilesCmd.Flags().Float64Var(&tileKeepProb, "keep-empty-prob", 0.05, "probability of keeping an annotation-free tile")
	tilesCmd.Flags().Int64Var(&tileSeed, "seed", 0, "negative-sampling seed")
	rootCmd.AddCommand(tilesCmd)
}
