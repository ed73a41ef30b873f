package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// StartJobRequest describes the (document, backend) pair a job row tracks.
type StartJobRequest struct {
	RunID       uuid.UUID
	DocumentID  string
	ContentHash string
	Method      constants.Method
	Model       string
}

type ExtractJobRepository interface {
	Start(ctx context.Context, req StartJobRequest) (uuid.UUID, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, record entity.NormalizedRecord, validation entity.ValidationResult) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ExtractionJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: time.Now}
}

func (r *extractJobRepo) Start(ctx context.Context, req StartJobRequest) (uuid.UUID, error) {
	id := uuid.New()
	var model *string
	if req.Model != "" {
		model = &req.Model
	}
	_, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`INSERT INTO extraction_job (id, run_id, document_id, content_hash, method, model, started_at, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id.String(), req.RunID.String(), req.DocumentID, req.ContentHash, string(req.Method),
		nullString(model), formatTime(r.now()), string(constants.JobStatusRunning),
	)
	if err != nil {
		r.log.Error("extract_job start failed", "doc", req.DocumentID, "method", req.Method, "err", err)
		return uuid.Nil, err
	}
	r.log.Debug("extract_job started", "job_id", id, "doc", req.DocumentID, "method", req.Method)
	return id, nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, record entity.NormalizedRecord, validation entity.ValidationResult) error {
	normalized, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	errs, err := json.Marshal(validation.Errors)
	if err != nil {
		return fmt.Errorf("marshal validation errors: %w", err)
	}
	return r.finish(ctx, jobID, constants.JobStatusOK,
		`UPDATE extraction_job SET finished_at = ?, status = ?, is_valid = ?, normalized_json = ?, errors_json = ? WHERE id = ?`,
		formatTime(r.now()), string(constants.JobStatusOK), validation.IsValid, string(normalized), string(errs), jobID.String(),
	)
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	return r.finish(ctx, jobID, constants.JobStatusFailed,
		`UPDATE extraction_job SET finished_at = ?, status = ?, error_message = ? WHERE id = ?`,
		formatTime(r.now()), string(constants.JobStatusFailed), message, jobID.String(),
	)
}

func (r *extractJobRepo) finish(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, query string, args ...any) error {
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		r.log.Error("extract_job finish failed", "job_id", jobID, "status", status, "err", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("extract_job %s: %w", jobID, common.ErrNotFound)
	}
	r.log.Debug("extract_job finished", "job_id", jobID, "status", status)
	return nil
}

func (r *extractJobRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ExtractionJob, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		r.db.rebind(`SELECT id, run_id, document_id, content_hash, method, model, started_at, finished_at,
			status, error_message, is_valid, normalized_json, errors_json
			FROM extraction_job WHERE run_id = ? ORDER BY document_id, method`),
		runID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []entity.ExtractionJob
	for rows.Next() {
		var (
			job                    entity.ExtractionJob
			model, errMsg          sql.NullString
			startedAt              string
			finishedAt             sql.NullString
			isValid                sql.NullBool
			normalized, errorsJSON sql.NullString
		)
		if err := rows.Scan(&job.ID, &job.RunID, &job.DocumentID, &job.ContentHash, &job.Method, &model,
			&startedAt, &finishedAt, &job.Status, &errMsg, &isValid, &normalized, &errorsJSON); err != nil {
			return nil, err
		}
		job.Model = stringPtr(model)
		job.ErrorMessage = stringPtr(errMsg)
		if job.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if job.FinishedAt, err = parseNullTime(finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		if isValid.Valid {
			v := isValid.Bool
			job.IsValid = &v
		}
		if normalized.Valid {
			job.NormalizedJSON = json.RawMessage(normalized.String)
		}
		if errorsJSON.Valid {
			job.ErrorsJSON = json.RawMessage(errorsJSON.String)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
