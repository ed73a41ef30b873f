package export

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

const (
	sheetExtractions = "Extractions"
	sheetAccuracy    = "Accuracy"
)

// Service renders run results as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookXLSX returns a workbook with one row per extraction and, when report is
// non-nil, an accuracy sheet.
func (s *Service) WorkbookXLSX(batch entity.BatchResult, report *entity.ComparisonReport) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetExtractions); err != nil {
		return nil, err
	}
	writeExtractions(f, batch.Results)

	if report != nil {
		if _, err := f.NewSheet(sheetAccuracy); err != nil {
			return nil, err
		}
		writeAccuracy(f, *report)
	}
	idx, _ := f.GetSheetIndex(sheetExtractions)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", batch.RunID,
		"rows", len(batch.Results),
		"accuracy", report != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteXLSX writes the workbook to path.
func (s *Service) WriteXLSX(path string, batch entity.BatchResult, report *entity.ComparisonReport) error {
	b, err := s.WorkbookXLSX(batch, report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeExtractions(f *excelize.File, results []entity.ExtractionResult) {
	const sheet = sheetExtractions
	headers := []string{
		"Document", "Method", "Model", "Status", "Valid",
		"Company", "Date", "Total", "Currency", "Category",
		"Line Items", "Confidence", "Errors",
	}
	writeRow(f, sheet, 1, toAny(headers))

	for i, r := range results {
		row := make([]any, len(headers))
		row[0] = r.SourceDocument
		row[1] = string(r.ExtractionMethod)
		row[2] = r.Model
		row[3] = string(r.Status)
		if r.Validation != nil {
			row[4] = r.Validation.IsValid
			row[12] = truncate(strings.Join(r.Validation.Errors, "; "), 500)
		}
		if r.Failed() {
			row[12] = truncate(r.Error, 500)
		}
		if rec := r.Record; rec != nil {
			row[5] = deref(rec.CompanyName)
			row[6] = deref(rec.DocumentDate)
			if rec.TotalAmount != nil {
				row[7] = rec.TotalAmount.InexactFloat64()
			}
			row[8] = deref(rec.Currency)
			if rec.Category != nil {
				row[9] = string(*rec.Category)
			}
			row[10] = len(rec.LineItems)
		}
		if r.Confidence != nil {
			row[11] = *r.Confidence
		}
		writeRow(f, sheet, i+2, row)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // document
	_ = f.SetColWidth(sheet, "B", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 32) // company
	_ = f.SetColWidth(sheet, "G", "K", 14)
	_ = f.SetColWidth(sheet, "M", "M", 60) // errors
}

func writeAccuracy(f *excelize.File, rep entity.ComparisonReport) {
	const sheet = sheetAccuracy
	header := []any{"Method", "Documents"}
	for _, field := range rep.Fields {
		header = append(header, field)
	}
	header = append(header, "Overall")
	writeRow(f, sheet, 1, header)

	for i, m := range rep.Methods {
		row := []any{string(m.Method), m.Documents}
		for _, field := range rep.Fields {
			row = append(row, m.PerField[field])
		}
		row = append(row, m.Overall)
		writeRow(f, sheet, i+2, row)
	}
	_ = f.SetColWidth(sheet, "A", "A", 14)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
