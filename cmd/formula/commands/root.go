// Package commands implements the formula CLI: mine equation candidates from
// PDFs and turn them into COCO training data for the detector.
package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsawler/formula"
)

var (
	cfgFile string
	verbose bool
	dpiFlag int

	cfg formula.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "formula",
	Short: "Equation detector dataset preparation",
	Long: `formula mines displayed-equation candidates from PDF papers and prepares
COCO training data from them: page-level annotations, overlapping tile crops
with clipped boxes, and document-level train/val splits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		cfg = formula.DefaultConfig()
		if cfgFile != "" {
			loaded, err := formula.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			log.Debug().Str("file", cfgFile).Msg("loaded config")
		}
		if cmd.Root().PersistentFlags().Changed("dpi") {
			cfg.DPI = dpiFlag
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().IntVar(&dpiFlag, "dpi", 300, "rasterization resolution")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
