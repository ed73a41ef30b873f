package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/extract"
	"github.com/joseph-ayodele/extraction-bench/internal/extract/pattern"
	"github.com/joseph-ayodele/extraction-bench/internal/llm"
	"github.com/joseph-ayodele/extraction-bench/internal/llm/mock"
	"github.com/joseph-ayodele/extraction-bench/internal/pipeline"
	"github.com/joseph-ayodele/extraction-bench/internal/repository"
)

const invoiceText = "INVOICE #INV-2024-001\n" +
	"From: Acme Trading Ltd\n" +
	"Invoice Date: January 15, 2024\n" +
	"Subtotal: $7,000.00\n" +
	"Tax: $692.00\n" +
	"TOTAL: $7,692.00\n"

// failingBackend fails for every document whose ID contains fail.
type failingBackend struct {
	calls atomic.Int32
	fail  string
}

func (f *failingBackend) Method() constants.Method { return "flaky" }

func (f *failingBackend) Extract(_ context.Context, doc entity.Document) (entity.RawExtraction, error) {
	f.calls.Add(1)
	if strings.Contains(doc.ID, f.fail) {
		return entity.RawExtraction{}, common.NewExtractionError("backend unavailable", errors.New("boom"))
	}
	return entity.RawExtraction{
		DocumentID: doc.ID,
		Fields:     map[string]any{entity.FieldCompanyName: "X Ltd"},
	}, nil
}

func TestBackendsAreInterchangeable(t *testing.T) {
	p := pipeline.NewProcessor(nil, nil, nil)
	doc := entity.Document{ID: "invoice_1.txt", Text: invoiceText, TypeHint: constants.DocTypeInvoice}

	backends := []extract.Backend{
		pattern.New(nil),
		llm.NewBackend(mock.New(), llm.Options{}, nil),
	}
	want := decimal.RequireFromString("7692")
	for _, b := range backends {
		res := p.Process(context.Background(), uuid.New(), doc, b)
		require.Equal(t, constants.JobStatusOK, res.Status, "method %s", b.Method())
		require.Equal(t, b.Method(), res.ExtractionMethod)
		require.NotNil(t, res.Record)
		require.Equal(t, b.Method(), res.Record.ExtractionMethod)
		require.Equal(t, "invoice_1.txt", res.Record.SourceDocument)

		require.NotNil(t, res.Record.TotalAmount)
		require.True(t, want.Equal(*res.Record.TotalAmount), "got %s", res.Record.TotalAmount)
		require.Equal(t, "2024-01-15", *res.Record.DocumentDate)
		require.Equal(t, "USD", *res.Record.Currency)
		require.Equal(t, constants.Expense, *res.Record.Category)
		require.True(t, res.Validation.IsValid, "errors: %v", res.Validation.Errors)
	}
}

func TestProcessRecordsFailure(t *testing.T) {
	p := pipeline.NewProcessor(nil, nil, nil)
	res := p.Process(context.Background(), uuid.New(), entity.Document{ID: "fail.txt"}, &failingBackend{fail: "fail"})

	require.True(t, res.Failed())
	require.Contains(t, res.Error, "backend unavailable")
	require.Nil(t, res.Record)
	require.Nil(t, res.Validation)
	require.False(t, res.ExtractedAt.IsZero())
}

func TestRunnerOrderAndSummary(t *testing.T) {
	flaky := &failingBackend{fail: "b"}
	backends := []extract.Backend{pattern.New(nil), flaky}
	docs := []entity.Document{
		{ID: "a.txt", Text: invoiceText},
		{ID: "b.txt", Text: "   "},
		{ID: "c.txt", Text: "meeting notes"},
	}

	r := pipeline.NewRunner(nil, pipeline.NewProcessor(nil, nil, nil), backends, nil, 2)
	out, err := r.Run(context.Background(), docs)
	require.NoError(t, err)
	require.NotEmpty(t, out.RunID)
	require.Len(t, out.Results, 6)
	require.Equal(t, int32(3), flaky.calls.Load())

	var order []string
	for _, res := range out.Results {
		order = append(order, res.SourceDocument+"/"+string(res.ExtractionMethod))
	}
	require.Equal(t, []string{
		"a.txt/pattern", "a.txt/flaky",
		"b.txt/pattern", "b.txt/flaky",
		"c.txt/pattern", "c.txt/flaky",
	}, order)

	// b.txt is blank: pattern rejects it; flaky fails on it by name
	require.True(t, out.Results[2].Failed())
	require.True(t, out.Results[3].Failed())

	require.Equal(t, []entity.MethodSummary{
		{Method: constants.MethodPattern, Documents: 3, Valid: 1, Invalid: 1, Failed: 1},
		{Method: "flaky", Documents: 3, Valid: 0, Invalid: 2, Failed: 1},
	}, out.Summary)

	byMethod := out.ByMethod()
	require.Len(t, byMethod[constants.MethodPattern], 3)
}

func TestRunnerRequiresBackends(t *testing.T) {
	_, err := pipeline.NewRunner(nil, pipeline.NewProcessor(nil, nil, nil), nil, nil, 0).Run(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := pipeline.NewRunner(nil, pipeline.NewProcessor(nil, nil, nil), []extract.Backend{pattern.New(nil)}, nil, 1)
	_, err := r.Run(ctx, []entity.Document{{ID: "a.txt", Text: invoiceText}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunnerPersistsJobs(t *testing.T) {
	db, err := repository.Open(context.Background(), repository.Config{Driver: common.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })

	jobs := repository.NewExtractJobRepository(db, nil)
	runs := repository.NewRunRepository(db, nil)
	p := pipeline.NewProcessor(nil, nil, jobs)
	r := pipeline.NewRunner(nil, p, []extract.Backend{pattern.New(nil), &failingBackend{fail: "a"}}, runs, 2)

	out, err := r.Run(context.Background(), []entity.Document{{ID: "a.txt", Text: invoiceText, ContentHash: "h"}})
	require.NoError(t, err)

	runID := uuid.MustParse(out.RunID)
	run, err := runs.Get(context.Background(), runID)
	require.NoError(t, err)
	require.Equal(t, 1, run.Documents)
	require.Equal(t, 1, run.Failures)
	require.NotNil(t, run.FinishedAt)

	rows, err := jobs.ListByRun(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	statuses := map[string]string{}
	for _, row := range rows {
		statuses[row.Method] = row.Status
	}
	require.Equal(t, map[string]string{
		"flaky":   string(constants.JobStatusFailed),
		"pattern": string(constants.JobStatusOK),
	}, statuses)
}
