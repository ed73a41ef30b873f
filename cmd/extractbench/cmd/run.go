package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/extraction-bench/internal/compare"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/export"
	"github.com/joseph-ayodele/extraction-bench/internal/ingest"
	"github.com/joseph-ayodele/extraction-bench/internal/normalize"
	"github.com/joseph-ayodele/extraction-bench/internal/pipeline"
	"github.com/joseph-ayodele/extraction-bench/internal/repository"
)

var runFlags struct {
	out         string
	xlsx        string
	truth       string
	concurrency int
	backends    string
	dayFirst    bool
	quiet       bool
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.out, "out", "results.json", "JSON artifact path")
	f.StringVar(&runFlags.xlsx, "xlsx", "", "optional XLSX workbook path")
	f.StringVar(&runFlags.truth, "truth", "", "optional JSON5 ground truth file; enables scoring")
	f.IntVar(&runFlags.concurrency, "concurrency", 0, "worker pool size (default from config)")
	f.StringVar(&runFlags.backends, "backends", "", "comma-separated backends, e.g. pattern,model (default from config)")
	f.BoolVar(&runFlags.dayFirst, "day-first", false, "read ambiguous slash dates as D/M/YYYY")
	f.BoolVar(&runFlags.quiet, "quiet", false, "skip terminal tables")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <dir>",
	Short: "Extract every document under dir with each configured backend.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if runFlags.concurrency > 0 {
			cfg.Pipeline.Concurrency = runFlags.concurrency
		}
		if runFlags.backends != "" {
			cfg.Pipeline.Backends = strings.Split(runFlags.backends, ",")
		}
		if cmd.Flags().Changed("day-first") {
			cfg.Pipeline.DayFirst = runFlags.dayFirst
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		db, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		var (
			jobs repository.ExtractJobRepository
			runs repository.RunRepository
		)
		if db != nil {
			defer db.Close(logger)
			jobs = repository.NewExtractJobRepository(db, logger)
			runs = repository.NewRunRepository(db, logger)
		}

		backends, err := buildBackends(cfg, db, logger)
		if err != nil {
			return err
		}

		docs, _, _, err := ingest.NewFSLoader(logger).LoadDirectory(ctx, args[0])
		if err != nil {
			return err
		}

		n := normalize.NewNormalizer(normalize.Options{DayFirst: cfg.Pipeline.DayFirst})
		runner := pipeline.NewRunner(logger, pipeline.NewProcessor(logger, n, jobs), backends, runs, cfg.Pipeline.Concurrency)
		batch, err := runner.Run(ctx, docs)
		if err != nil {
			return err
		}

		var report *entity.ComparisonReport
		if runFlags.truth != "" {
			truth, err := compare.LoadGroundTruth(runFlags.truth, n)
			if err != nil {
				return err
			}
			rep := compare.Compare(batch.Results, truth)
			report = &rep
		}

		if err := export.WriteJSON(runFlags.out, export.NewArtifact(batch, report)); err != nil {
			return err
		}
		logger.Info("run.artifact.written", "path", runFlags.out, "run_id", batch.RunID)

		if runFlags.xlsx != "" {
			if err := export.NewService(logger).WriteXLSX(runFlags.xlsx, batch, report); err != nil {
				return err
			}
		}

		if !runFlags.quiet {
			renderSummary(os.Stdout, batch.Summary)
			if report != nil {
				renderAccuracy(os.Stdout, *report)
			}
		}
		return nil
	},
}
