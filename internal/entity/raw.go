package entity

import "github.com/joseph-ayodele/extraction-bench/constants"

// RawExtraction is backend output before normalization. Fields values are untyped:
// string, json.Number, float64, nested map/slice, or nil.
type RawExtraction struct {
	DocumentID string         `json:"document_id"`
	Fields     map[string]any `json:"fields"`
	Metadata   RawMetadata    `json:"metadata"`
}

// RawMetadata tags a raw extraction with the backend that produced it.
type RawMetadata struct {
	Method     constants.Method `json:"method"`
	Model      string           `json:"model,omitempty"`
	Confidence *float64         `json:"confidence,omitempty"`
}
