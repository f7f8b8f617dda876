package commands

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/formula/coco"
)

var (
	splitValFrac  float64
	splitSeed     int64
	splitOutTrain string
	splitOutVal   string
)

var splitCmd = &cobra.Command{
	Use:   "split <annotations.json>",
	Short: "Split a COCO dataset into train and val by document",
	Long: `split groups a dataset's images by their source document and assigns whole
documents to the validation set, so no document straddles the split. The
shuffle is seeded and reproducible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := coco.Load(args[0])
		if err != nil {
			return err
		}

		train, val, err := coco.SplitByDocument(ds, splitValFrac, splitSeed)
		if err != nil {
			return err
		}

		if err := train.WriteFile(splitOutTrain); err != nil {
			return err
		}
		if err := val.WriteFile(splitOutVal); err != nil {
			return err
		}
		log.Info().
			Int("train_images", len(train.Images)).
			Int("val_images", len(val.Images)).
			Str("train", splitOutTrain).Str("val", splitOutVal).
			Msg("split written")
		return nil
	},
}

func init() {
	splitCmd.Flags().Float64Var(&splitValFrac, "val-frac", 0.1, "fraction of documents assigned to val")
	splitCmd.Flags().Int64Var(&splitSeed, "seed", 17, "document shuffle seed")
	splitCmd.Flags().StringVar(&splitOutTrain, "out-train", "annotations_train.json", "train output file")
	splitCmd.Flags().StringVar(&splitOutVal, "out-val", "annotations_val.json", "val output file")
	rootCmd.AddCommand(splitCmd)
}
