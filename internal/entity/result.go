package entity

import (
	"time"

	"github.com/joseph-ayodele/extraction-bench/constants"
)

// ValidationResult is the outcome of validating one NormalizedRecord.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ExtractionResult is one (document, backend) row of the output artifact.
type ExtractionResult struct {
	SourceDocument   string              `json:"source_document"`
	ExtractionMethod constants.Method    `json:"extraction_method"`
	Model            string              `json:"model,omitempty"`
	Status           constants.JobStatus `json:"status"`
	Error            string              `json:"error,omitempty"`
	Confidence       *float64            `json:"confidence,omitempty"`
	Record           *NormalizedRecord   `json:"extracted_data,omitempty"`
	Validation       *ValidationResult   `json:"validation,omitempty"`
	Notes            []string            `json:"notes,omitempty"`
	ExtractedAt      time.Time           `json:"extracted_at"`
}

// Failed reports whether the backend could not produce a record.
func (r ExtractionResult) Failed() bool {
	return r.Status == constants.JobStatusFailed
}

// MethodSummary counts outcomes for one backend in a batch.
type MethodSummary struct {
	Method    constants.Method `json:"method"`
	Documents int              `json:"documents"`
	Valid     int              `json:"valid"`
	Invalid   int              `json:"invalid"`
	Failed    int              `json:"failed"`
}

// BatchResult is everything produced by one run over a set of documents.
type BatchResult struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Results    []ExtractionResult `json:"-"`
	Summary    []MethodSummary    `json:"summary"`
}

// ByMethod groups results by backend, preserving document order.
func (b BatchResult) ByMethod() map[constants.Method][]ExtractionResult {
	out := make(map[constants.Method][]ExtractionResult)
	for _, r := range b.Results {
		out[r.ExtractionMethod] = append(out[r.ExtractionMethod], r)
	}
	return out
}
