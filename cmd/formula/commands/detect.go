package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/formula"
	"github.com/tsawler/formula/dataset"
)

var (
	detectSpans    string
	detectOCR      bool
	detectOut      string
	detectDocID    string
	detectMinScore float64
)

var detectCmd = &cobra.Command{
	Use:   "detect <paper.pdf>",
	Short: "Mine equation candidate records from a PDF",
	Long: `detect runs the candidate heuristics over a paper and writes one record per
surviving candidate as JSON Lines. Spans come from a JSONL span file
(--spans), from OCR (--ocr, requires an ocr-tagged build), or both, with OCR
backing up pages the span file leaves empty.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pdf := args[0]
		docID := detectDocID
		if docID == "" {
			docID = strings.TrimSuffix(filepath.Base(pdf), filepath.Ext(pdf))
		}
		minScore := cfg.MinScore
		if cmd.Flags().Changed("min-score") {
			minScore = detectMinScore
		}

		pipeline := formula.Open(pdf).
			DPI(cfg.DPI).
			MinScore(minScore).
			DetectConfig(cfg.Detect)
		if detectSpans != "" {
			pipeline = pipeline.SpansFrom(detectSpans)
		}
		if detectOCR {
			pipeline = pipeline.WithOCR()
		}

		records, err := pipeline.Records(docID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			log.Warn().Str("doc", docID).Msg("no candidates above the score cutoff")
		}

		out := detectOut
		if out == "" {
			out = docID + "_records.jsonl"
		}
		if err := dataset.WriteRecords(out, records); err != nil {
			return err
		}
		log.Info().Str("doc", docID).Int("records", len(records)).Str("out", out).
			Msg("candidate mining complete")
		return nil
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectSpans, "spans", "", "JSONL span file for the paper")
	detectCmd.Flags().BoolVar(&detectOCR, "ocr", false, "use OCR as a span source")
	detectCmd.Flags().StringVarP(&detectOut, "out", "o", "", "output record file (default <doc>_records.jsonl)")
	detectCmd.Flags().StringVar(&detectDocID, "doc-id", "", "document id (default: PDF file stem)")
	detectCmd.Flags().Float64Var(&detectMinScore, "min-score", 0.6, "candidate score cutoff")
	rootCmd.AddCommand(detectCmd)
}
