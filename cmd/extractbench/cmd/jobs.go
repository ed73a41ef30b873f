package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/repository"
)

func init() {
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(dbCheckCmd)
}

var jobsCmd = &cobra.Command{
	Use:   "jobs <run-id>",
	Short: "List the stored extraction jobs of a run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return common.NewAppError(common.CodeConfig, "run id must be a UUID", common.ErrInvalidInput)
		}
		db, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close(logger)

		run, err := repository.NewRunRepository(db, logger).Get(cmd.Context(), runID)
		if err != nil {
			return err
		}
		jobs, err := repository.NewExtractJobRepository(db, logger).ListByRun(cmd.Context(), runID)
		if err != nil {
			return err
		}

		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(os.Stdout, "run %s: %d documents, %d failures, started %s, finished %s\n",
			run.ID, run.Documents, run.Failures, run.StartedAt.Format(time.RFC3339), finished)
		renderJobs(os.Stdout, jobs)
		return nil
	},
}

var dbCheckCmd = &cobra.Command{
	Use:   "dbcheck",
	Short: "Open the configured store, apply the schema and ping it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close(logger)

		if err := db.HealthCheck(cmd.Context(), 5*time.Second); err != nil {
			return err
		}
		logger.Info("db.health.ok", "driver", cfg.Database.Driver)
		fmt.Fprintln(os.Stdout, "ok")
		return nil
	},
}

func requireStore(cmd *cobra.Command) (*repository.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, common.NewAppError(common.CodeConfig, "database.dsn (DB_URL) is not set", common.ErrInvalidInput)
	}
	return openStore(cmd.Context(), cfg, logger)
}
