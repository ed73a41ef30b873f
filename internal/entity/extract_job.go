package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionJob is the persisted bookkeeping row for one (document, backend) run.
type ExtractionJob struct {
	ID             uuid.UUID       `json:"id"`
	RunID          uuid.UUID       `json:"run_id"`
	DocumentID     string          `json:"document_id"`
	ContentHash    string          `json:"content_hash"`
	Method         string          `json:"method"`
	Model          *string         `json:"model,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
	Status         string          `json:"status"`
	ErrorMessage   *string         `json:"error_message,omitempty"`
	IsValid        *bool           `json:"is_valid,omitempty"`
	NormalizedJSON json.RawMessage `json:"normalized_json,omitempty"`
	ErrorsJSON     json.RawMessage `json:"errors_json,omitempty"`
}

// ExtractionRun is the persisted header row of one batch run.
type ExtractionRun struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Documents  int        `json:"documents"`
	Failures   int        `json:"failures"`
}
