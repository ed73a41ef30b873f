package compare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/normalize"
)

func record(doc string, method constants.Method, fields map[string]any) entity.NormalizedRecord {
	return normalize.Normalize(entity.RawExtraction{
		DocumentID: doc,
		Fields:     fields,
		Metadata:   entity.RawMetadata{Method: method},
	})
}

func okResult(doc string, method constants.Method, fields map[string]any) entity.ExtractionResult {
	rec := record(doc, method, fields)
	return entity.ExtractionResult{
		SourceDocument:   doc,
		ExtractionMethod: method,
		Status:           constants.JobStatusOK,
		Record:           &rec,
	}
}

func fullFields(company string) map[string]any {
	return map[string]any{
		entity.FieldCompanyName:  company,
		entity.FieldDocumentDate: "2024-01-15",
		entity.FieldTotalAmount:  "7692.00",
		entity.FieldCurrency:     "EUR",
		entity.FieldCategory:     "expense",
		entity.FieldLineItems: []any{
			map[string]any{"description": "Widgets", "amount": 3400},
		},
	}
}

func TestCompareTwoOfThreeVersusThreeOfThree(t *testing.T) {
	truth := map[string]entity.NormalizedRecord{
		"a.txt": record("a.txt", constants.MethodGroundTruth, fullFields("Acme Ltd")),
		"b.txt": record("b.txt", constants.MethodGroundTruth, fullFields("Globex Corp")),
		"c.txt": record("c.txt", constants.MethodGroundTruth, fullFields("Initech LLC")),
	}
	results := []entity.ExtractionResult{
		okResult("a.txt", constants.MethodPattern, fullFields("Acme Ltd")),
		okResult("a.txt", constants.MethodModel, fullFields("Acme Ltd")),
		okResult("b.txt", constants.MethodPattern, fullFields("Globex Corporation")),
		okResult("b.txt", constants.MethodModel, fullFields("Globex Corp")),
		okResult("c.txt", constants.MethodPattern, fullFields("Initech LLC")),
		okResult("c.txt", constants.MethodModel, fullFields("Initech LLC")),
	}

	rep := Compare(results, truth)
	require.Equal(t, 3, rep.Documents)
	require.Equal(t, Fields, rep.Fields)

	pat, ok := rep.Accuracy(constants.MethodPattern)
	require.True(t, ok)
	require.InDelta(t, 0.667, pat.PerField[entity.FieldCompanyName], 0.001)
	require.InDelta(t, 1.0, pat.PerField[entity.FieldTotalAmount], 1e-9)
	require.InDelta(t, (2.0/3+5)/6, pat.Overall, 1e-9)
	require.Len(t, pat.Mismatches, 1)
	mm := pat.Mismatches[0]
	require.Equal(t, "b.txt", mm.Document)
	require.Equal(t, "Globex Corporation", mm.Got)
	require.Equal(t, "Globex Corp", mm.Want)
	require.NotNil(t, mm.Similarity)
	require.Greater(t, *mm.Similarity, 0.8)

	model, ok := rep.Accuracy(constants.MethodModel)
	require.True(t, ok)
	require.InDelta(t, 1.0, model.PerField[entity.FieldCompanyName], 1e-9)
	require.InDelta(t, 1.0, model.Overall, 1e-9)
	require.Empty(t, model.Mismatches)
}

func TestCompareCurrencyMismatch(t *testing.T) {
	truthFields := fullFields("Balkan Tours JSC")
	truthFields[entity.FieldCurrency] = "EUR"
	gotFields := fullFields("Balkan Tours JSC")
	gotFields[entity.FieldCurrency] = "ALL"

	rep := Compare(
		[]entity.ExtractionResult{okResult("d.txt", constants.MethodModel, gotFields)},
		map[string]entity.NormalizedRecord{"d.txt": record("d.txt", constants.MethodGroundTruth, truthFields)},
	)
	acc, _ := rep.Accuracy(constants.MethodModel)
	require.Zero(t, acc.PerField[entity.FieldCurrency])
	require.Len(t, acc.Mismatches, 1)
	require.Equal(t, entity.FieldCurrency, acc.Mismatches[0].Field)
	require.Equal(t, "ALL", acc.Mismatches[0].Got)
	require.Equal(t, "EUR", acc.Mismatches[0].Want)
}

func TestCompareFailedIsAllAbsent(t *testing.T) {
	truth := map[string]entity.NormalizedRecord{
		"a.txt": record("a.txt", constants.MethodGroundTruth, map[string]any{
			entity.FieldCompanyName: "Acme Ltd",
		}),
	}
	failed := entity.ExtractionResult{
		SourceDocument:   "a.txt",
		ExtractionMethod: constants.MethodModel,
		Status:           constants.JobStatusFailed,
		Error:            "timeout",
	}
	rep := Compare([]entity.ExtractionResult{failed}, truth)
	acc, ok := rep.Accuracy(constants.MethodModel)
	require.True(t, ok)

	// only company_name is present in truth; every other field is absent on both sides
	want := map[string]float64{
		entity.FieldCompanyName:  0,
		entity.FieldDocumentDate: 1,
		entity.FieldTotalAmount:  1,
		entity.FieldCurrency:     1,
		entity.FieldCategory:     1,
		entity.FieldLineItems:    1,
	}
	if diff := cmp.Diff(want, acc.PerField); diff != "" {
		t.Fatalf("per-field mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "(absent)", acc.Mismatches[0].Got)
	require.Nil(t, acc.Mismatches[0].Similarity)
}

func TestCompareSkipsDocumentsWithoutTruth(t *testing.T) {
	rep := Compare(
		[]entity.ExtractionResult{okResult("x.txt", constants.MethodPattern, fullFields("X Ltd"))},
		map[string]entity.NormalizedRecord{},
	)
	require.Zero(t, rep.Documents)
	require.Empty(t, rep.Methods)
}

func TestCompareAmountsByValue(t *testing.T) {
	got := fullFields("Acme Ltd")
	got[entity.FieldTotalAmount] = "$7,692"
	rep := Compare(
		[]entity.ExtractionResult{okResult("a.txt", constants.MethodPattern, got)},
		map[string]entity.NormalizedRecord{"a.txt": record("a.txt", constants.MethodGroundTruth, fullFields("Acme Ltd"))},
	)
	acc, _ := rep.Accuracy(constants.MethodPattern)
	require.InDelta(t, 1.0, acc.Overall, 1e-9)
}

func TestLineItemsEqual(t *testing.T) {
	a := record("a", constants.MethodModel, map[string]any{entity.FieldLineItems: []any{
		map[string]any{"description": "A", "amount": "10.0", "quantity": 2},
		map[string]any{"description": "B", "amount": 5},
	}}).LineItems
	sameDifferentQty := record("a", constants.MethodModel, map[string]any{entity.FieldLineItems: []any{
		map[string]any{"description": "A", "amount": 10},
		map[string]any{"description": "B", "amount": "5.00"},
	}}).LineItems
	reordered := []entity.LineItem{a[1], a[0]}

	require.True(t, lineItemsEqual(a, sameDifferentQty))
	require.False(t, lineItemsEqual(a, reordered))
	require.False(t, lineItemsEqual(a, a[:1]))
	require.True(t, lineItemsEqual(nil, nil))
}

func TestLoadGroundTruth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truth.json5")
	content := `{
  // invoice sample
  "invoice_1.txt": {
    company_name: "Acme Corporation Ltd.",
    document_date: "January 15, 2024",
    total_amount: 7692.00,
    currency: "$",
    category: "expense",
  },
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	truth, err := LoadGroundTruth(path, nil)
	require.NoError(t, err)
	rec, ok := truth["invoice_1.txt"]
	require.True(t, ok)
	require.Equal(t, "2024-01-15", *rec.DocumentDate)
	require.Equal(t, "USD", *rec.Currency)
	require.Equal(t, "7692", rec.TotalAmount.String())
	require.Equal(t, constants.MethodGroundTruth, rec.ExtractionMethod)
}

func TestParseGroundTruthRejectsNonObject(t *testing.T) {
	_, err := ParseGroundTruth([]byte(`[1, 2]`), nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = LoadGroundTruth(filepath.Join(t.TempDir(), "missing.json5"), nil)
	require.Error(t, err)
}
