package extract

import (
	"context"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// Backend turns document text into a raw field mapping (pattern rules or a model).
// Implementations return an ExtractionError (common.ErrExtraction) when a document
// cannot be processed at all; unmatched fields are simply absent.
type Backend interface {
	Method() constants.Method
	Extract(ctx context.Context, doc entity.Document) (entity.RawExtraction, error)
}

// ModelNamer is implemented by backends that can report the model they run.
type ModelNamer interface {
	ModelName() string
}

// ModelOf returns the model reported by b, or "" when it does not report one.
func ModelOf(b Backend) string {
	if m, ok := b.(ModelNamer); ok {
		return m.ModelName()
	}
	return ""
}
