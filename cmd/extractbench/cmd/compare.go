package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/extraction-bench/internal/compare"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/export"
	"github.com/joseph-ayodele/extraction-bench/internal/normalize"
)

var compareFlags struct {
	truth      string
	xlsx       string
	write      bool
	mismatches bool
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareFlags.truth, "truth", "", "JSON5 ground truth file (required)")
	f.StringVar(&compareFlags.xlsx, "xlsx", "", "optional XLSX workbook path")
	f.BoolVar(&compareFlags.write, "write", false, "store the comparison back into the artifact")
	f.BoolVar(&compareFlags.mismatches, "mismatches", false, "print every mismatching field")
	_ = compareCmd.MarkFlagRequired("truth")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <results.json>",
	Short: "Score a previous run's artifact against ground truth.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := export.ReadJSON(args[0])
		if err != nil {
			return err
		}
		n := normalize.NewNormalizer(normalize.Options{DayFirst: cfg.Pipeline.DayFirst})
		truth, err := compare.LoadGroundTruth(compareFlags.truth, n)
		if err != nil {
			return err
		}

		rep := compare.Compare(art.Results(), truth)
		logger.Info("compare.done", "run_id", art.RunID, "documents", rep.Documents, "methods", len(rep.Methods))

		if compareFlags.write {
			art.Comparison = &rep
			if err := export.WriteJSON(args[0], art); err != nil {
				return err
			}
		}
		if compareFlags.xlsx != "" {
			batch := entity.BatchResult{
				RunID:      art.RunID,
				StartedAt:  art.StartedAt,
				FinishedAt: art.FinishedAt,
				Results:    art.Results(),
				Summary:    art.Summary,
			}
			if err := export.NewService(logger).WriteXLSX(compareFlags.xlsx, batch, &rep); err != nil {
				return err
			}
		}

		renderAccuracy(os.Stdout, rep)
		if compareFlags.mismatches {
			renderMismatches(os.Stdout, rep)
		}
		return nil
	},
}
