package entity

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/extraction-bench/constants"
)

// Field names shared by the model prompt, the normalizer and the comparison report.
const (
	FieldCompanyName       = "company_name"
	FieldDocumentDate      = "document_date"
	FieldTotalAmount       = "total_amount"
	FieldCurrency          = "currency"
	FieldCategory          = "category"
	FieldLineItems         = "line_items"
	FieldAdditionalMetrics = "additional_metrics"
)

// NormalizedRecord is the canonical representation every downstream stage works on.
// A nil pointer or empty collection means the field is absent.
type NormalizedRecord struct {
	CompanyName       *string             `json:"company_name,omitempty"`
	DocumentDate      *string             `json:"document_date,omitempty"` // YYYY-MM-DD
	TotalAmount       *decimal.Decimal    `json:"total_amount,omitempty"`
	Currency          *string             `json:"currency,omitempty"` // ISO 4217
	Category          *constants.Category `json:"category,omitempty"`
	LineItems         []LineItem          `json:"line_items,omitempty"`
	AdditionalMetrics map[string]any      `json:"additional_metrics,omitempty"`
	SourceDocument    string              `json:"source_document"`
	ExtractionMethod  constants.Method    `json:"extraction_method"`
}

// LineItem is one row of an itemized document. Amount keeps its sign so that
// validation can report negative rows; a nil Amount means it was not numeric.
type LineItem struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
}
