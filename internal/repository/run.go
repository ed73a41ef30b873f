package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

type RunRepository interface {
	Start(ctx context.Context, runID uuid.UUID, startedAt time.Time, documents int) error
	Finish(ctx context.Context, runID uuid.UUID, finishedAt time.Time, failures int) error
	Get(ctx context.Context, runID uuid.UUID) (*entity.ExtractionRun, error)
}

type runRepo struct {
	db  *DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, runID uuid.UUID, startedAt time.Time, documents int) error {
	_, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`INSERT INTO extraction_run (id, started_at, documents) VALUES (?, ?, ?)`),
		runID.String(), formatTime(startedAt), documents,
	)
	if err != nil {
		r.log.Error("extraction_run start failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("extraction_run started", "run_id", runID, "documents", documents)
	return nil
}

func (r *runRepo) Finish(ctx context.Context, runID uuid.UUID, finishedAt time.Time, failures int) error {
	res, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`UPDATE extraction_run SET finished_at = ?, failures = ? WHERE id = ?`),
		formatTime(finishedAt), failures, runID.String(),
	)
	if err != nil {
		r.log.Error("extraction_run finish failed", "run_id", runID, "err", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("extraction_run %s: %w", runID, common.ErrNotFound)
	}
	r.log.Info("extraction_run finished", "run_id", runID, "failures", failures)
	return nil
}

func (r *runRepo) Get(ctx context.Context, runID uuid.UUID) (*entity.ExtractionRun, error) {
	var (
		run        entity.ExtractionRun
		startedAt  string
		finishedAt sql.NullString
	)
	err := r.db.SQL.QueryRowContext(ctx,
		r.db.rebind(`SELECT id, started_at, finished_at, documents, failures FROM extraction_run WHERE id = ?`),
		runID.String(),
	).Scan(&run.ID, &startedAt, &finishedAt, &run.Documents, &run.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extraction_run %s: %w", runID, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = parseNullTime(finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}
