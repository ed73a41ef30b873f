package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

func sampleBatch() entity.BatchResult {
	company := "Acme Ltd"
	date := "2024-01-15"
	total := decimal.RequireFromString("7692.00")
	cur := "USD"
	cat := constants.Expense
	conf := 0.9
	rec := entity.NormalizedRecord{
		CompanyName:      &company,
		DocumentDate:     &date,
		TotalAmount:      &total,
		Currency:         &cur,
		Category:         &cat,
		SourceDocument:   "a.txt",
		ExtractionMethod: constants.MethodPattern,
	}
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return entity.BatchResult{
		RunID:      "run-1",
		StartedAt:  at,
		FinishedAt: at.Add(time.Second),
		Results: []entity.ExtractionResult{
			{
				SourceDocument:   "a.txt",
				ExtractionMethod: constants.MethodPattern,
				Model:            "regex",
				Status:           constants.JobStatusOK,
				Confidence:       &conf,
				Record:           &rec,
				Validation:       &entity.ValidationResult{IsValid: true, Errors: []string{}},
				ExtractedAt:      at,
			},
			{
				SourceDocument:   "a.txt",
				ExtractionMethod: constants.MethodModel,
				Model:            "mock",
				Status:           constants.JobStatusFailed,
				Error:            "EXTRACTION_ERROR: response is not JSON",
				ExtractedAt:      at,
			},
		},
		Summary: []entity.MethodSummary{
			{Method: constants.MethodPattern, Documents: 1, Valid: 1},
			{Method: constants.MethodModel, Documents: 1, Failed: 1},
		},
	}
}

func sampleReport() *entity.ComparisonReport {
	return &entity.ComparisonReport{
		Fields:    []string{entity.FieldCompanyName, entity.FieldTotalAmount},
		Documents: 1,
		Methods: []entity.MethodAccuracy{{
			Method:    constants.MethodPattern,
			Documents: 1,
			PerField:  map[string]float64{entity.FieldCompanyName: 1, entity.FieldTotalAmount: 0.5},
			Overall:   0.75,
		}},
	}
}

func TestJSONArtifactRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")
	a := NewArtifact(sampleBatch(), sampleReport())
	require.NoError(t, WriteJSON(path, a))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	require.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Extractions[constants.MethodPattern], 1)
	require.Len(t, got.Extractions[constants.MethodModel], 1)
	require.NotNil(t, got.Comparison)
	require.InDelta(t, 0.75, got.Comparison.Methods[0].Overall, 1e-9)

	rec := got.Extractions[constants.MethodPattern][0].Record
	require.True(t, decimal.RequireFromString("7692").Equal(*rec.TotalAmount))
	require.Len(t, got.Results(), 2)
}

func TestJSONArtifactOmitsComparison(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteJSON(path, NewArtifact(sampleBatch(), nil)))
	got, err := ReadJSON(path)
	require.NoError(t, err)
	require.Nil(t, got.Comparison)
}

func TestWorkbookXLSX(t *testing.T) {
	b, err := NewService(nil).WorkbookXLSX(sampleBatch(), sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{sheetExtractions, sheetAccuracy}, f.GetSheetList())

	rows, err := f.GetRows(sheetExtractions)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Document", rows[0][0])
	require.Equal(t, []string{"a.txt", "pattern", "regex", "OK", "TRUE", "Acme Ltd", "2024-01-15", "7692", "USD", "expense"}, rows[1][:10])
	require.Equal(t, "FAILED", rows[2][3])
	require.Contains(t, rows[2][12], "not JSON")

	acc, err := f.GetRows(sheetAccuracy)
	require.NoError(t, err)
	require.Equal(t, []string{"Method", "Documents", entity.FieldCompanyName, entity.FieldTotalAmount, "Overall"}, acc[0])
	require.Equal(t, []string{"pattern", "1", "1", "0.5", "0.75"}, acc[1])
}

func TestWorkbookXLSXWithoutReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, NewService(nil).WriteXLSX(path, sampleBatch(), nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{sheetExtractions}, f.GetSheetList())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "ab…", truncate("abcdef", 3))
}
