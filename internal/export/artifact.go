package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// Artifact is the JSON document written at the end of a run.
type Artifact struct {
	RunID       string                                         `json:"run_id"`
	StartedAt   time.Time                                      `json:"started_at"`
	FinishedAt  time.Time                                      `json:"finished_at"`
	Extractions map[constants.Method][]entity.ExtractionResult `json:"extractions"`
	Summary     []entity.MethodSummary                         `json:"summary"`
	Comparison  *entity.ComparisonReport                       `json:"comparison,omitempty"`
}

// NewArtifact groups batch results by backend; report may be nil.
func NewArtifact(batch entity.BatchResult, report *entity.ComparisonReport) Artifact {
	return Artifact{
		RunID:       batch.RunID,
		StartedAt:   batch.StartedAt,
		FinishedAt:  batch.FinishedAt,
		Extractions: batch.ByMethod(),
		Summary:     batch.Summary,
		Comparison:  report,
	}
}

// WriteJSON writes the artifact as indented JSON, creating parent directories.
func WriteJSON(path string, a Artifact) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ReadJSON loads an artifact written by WriteJSON.
func ReadJSON(path string) (Artifact, error) {
	var a Artifact
	b, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return a, fmt.Errorf("decode artifact: %w", err)
	}
	return a, nil
}

// Results flattens the artifact back into a list, grouped by backend in summary order.
func (a Artifact) Results() []entity.ExtractionResult {
	var methods []constants.Method
	for _, s := range a.Summary {
		methods = append(methods, s.Method)
	}
	var out []entity.ExtractionResult
	for _, m := range methods {
		out = append(out, a.Extractions[m]...)
	}
	return out
}
