package entity

import "github.com/joseph-ayodele/extraction-bench/constants"

// ComparisonReport holds accuracy statistics per backend.
type ComparisonReport struct {
	Fields    []string         `json:"fields"`
	Documents int              `json:"documents"`
	Methods   []MethodAccuracy `json:"methods"`
}

// MethodAccuracy is the per-field match fraction for one backend. Overall is the
// unweighted mean of PerField.
type MethodAccuracy struct {
	Method     constants.Method   `json:"method"`
	Documents  int                `json:"documents"`
	PerField   map[string]float64 `json:"per_field"`
	Overall    float64            `json:"overall"`
	Mismatches []FieldMismatch    `json:"mismatches,omitempty"`
}

// FieldMismatch records one field that disagreed with ground truth.
type FieldMismatch struct {
	Document   string   `json:"document"`
	Field      string   `json:"field"`
	Got        string   `json:"got"`
	Want       string   `json:"want"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Accuracy returns the entry for method, if present.
func (r ComparisonReport) Accuracy(method constants.Method) (MethodAccuracy, bool) {
	for _, m := range r.Methods {
		if m.Method == method {
			return m, true
		}
	}
	return MethodAccuracy{}, false
}
