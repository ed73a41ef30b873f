package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

func raw(fields map[string]any) entity.RawExtraction {
	return entity.RawExtraction{
		DocumentID: "invoice_1.txt",
		Fields:     fields,
		Metadata:   entity.RawMetadata{Method: constants.MethodPattern},
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string // "" means absent
	}{
		{"us grouping with symbol", "$7,692.00", "7692"},
		{"european grouping", "1.234,56 €", "1234.56"},
		{"comma thousands only", "1,234", "1234"},
		{"comma decimal", "12,5", "12.5"},
		{"code and spaces", "EUR 1 234,50", "1234.5"},
		{"verbal currency", "250 dollars", "250"},
		{"multi-word verbal currency", "1000 US dollars", "1000"},
		{"pound sterling", "£1,250.00 pound sterling", "1250"},
		{"partial phrase rejected", "1000 US", ""},
		{"trailing terminator", "7692.00.", "7692"},
		{"dotted millions", "1.234.567", "1234567"},
		{"json number", json.Number("99.95"), "99.95"},
		{"float", 12.5, "12.5"},
		{"int", 42, "42"},
		{"negative rejected", "-5.00", ""},
		{"parenthesised negative rejected", "(5.00)", ""},
		{"words rejected", "twelve", ""},
		{"empty", "", ""},
		{"nil", nil, ""},
		{"nan", math.NaN(), ""},
		{"inf", math.Inf(1), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := parseAmount(tt.in, false)
			if tt.want == "" {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseAmountAllowNegative(t *testing.T) {
	got, note := parseAmount("-120.50", true)
	require.Empty(t, note)
	require.NotNil(t, got)
	require.Equal(t, "-120.5", got.String())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in       string
		dayFirst bool
		want     string
	}{
		{"January 15, 2024", false, "2024-01-15"},
		{"Monday, January 15th, 2024", false, "2024-01-15"},
		{"Mar 5, 2024", false, "2024-03-05"},
		{"15 March 2024", false, "2024-03-15"},
		{"2024-01-15", false, "2024-01-15"},
		{"15/01/2024", false, "2024-01-15"},
		{"01/15/2024", false, "2024-01-15"},
		{"03/04/2024", false, "2024-03-04"},
		{"03/04/2024", true, "2024-04-03"},
		{"03.04.2024", false, "2024-04-03"},
		{"03-04-2024", false, "2024-04-03"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, note, ok := parseDate(tt.in, tt.dayFirst)
			require.True(t, ok, note)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateUnresolved(t *testing.T) {
	for _, in := range []string{"31/13/2024", "02/30/2024", "someday 2024"} {
		_, note, ok := parseDate(in, false)
		require.False(t, ok, in)
		require.Contains(t, note, "2024", in)
	}
}

func TestNormalize(t *testing.T) {
	rec, notes := NewNormalizer(Options{}).NormalizeWithNotes(raw(map[string]any{
		"company_name":  "  Acme   Trading Ltd ",
		"document_date": "January 15, 2024",
		"total_amount":  "$7,692.00",
		"currency":      "$",
		"category":      "Operating Expenses",
		"line_items": []any{
			map[string]any{"description": "Widgets", "amount": "1,200.00", "quantity": 3},
			map[string]any{"name": "Refund", "price": "-50"},
			"not an item",
		},
		"additional_metrics": map[string]any{
			"tax_rate": 0.2,
			"region":   " EMEA ",
			"nested":   map[string]any{"x": 1},
		},
		"vendor_code": "X-1",
	}))

	want := entity.NormalizedRecord{
		CompanyName:  ptr("Acme Trading Ltd"),
		DocumentDate: ptr("2024-01-15"),
		TotalAmount:  dec("7692.00"),
		Currency:     ptr("USD"),
		Category:     ptr(constants.Expense),
		LineItems: []entity.LineItem{
			{Description: "Widgets", Amount: dec("1200"), Quantity: dec("3")},
			{Description: "Refund", Amount: dec("-50")},
		},
		AdditionalMetrics: map[string]any{
			"tax_rate": decimal.RequireFromString("0.2"),
			"region":   "EMEA",
		},
		SourceDocument:   "invoice_1.txt",
		ExtractionMethod: constants.MethodPattern,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{
		"line_items[2]: not an object, dropped",
		"additional_metrics.nested: unsupported map[string]interface {} dropped",
		"vendor_code: unknown field dropped",
	}, notes)
}

func TestNormalizeAbsentFields(t *testing.T) {
	rec, notes := NewNormalizer(Options{}).NormalizeWithNotes(raw(map[string]any{
		"company_name":  "",
		"document_date": "31/13/2024",
		"total_amount":  "-10",
		"currency":      "XYZ",
		"category":      "misc",
		"line_items":    nil,
	}))
	require.Nil(t, rec.CompanyName)
	require.Nil(t, rec.DocumentDate)
	require.Nil(t, rec.TotalAmount)
	require.Nil(t, rec.Currency)
	require.Nil(t, rec.Category)
	require.Empty(t, rec.LineItems)
	require.Len(t, notes, 4)
	require.Contains(t, notes[0], "year 2024")
}

func TestNormalizeCurrencyForms(t *testing.T) {
	tests := map[string]string{
		"EUR":        "EUR",
		"eur":        "EUR",
		"€":          "EUR",
		"euros":      "EUR",
		"лв":         "BGN",
		"Lev":        "BGN",
		"ALL":        "ALL",
		"EUR (Euro)": "EUR",

		"All amounts in EUR":   "EUR",
		"all figures in euros": "EUR",
		"paid in US dollars":   "USD",
	}
	for in, want := range tests {
		rec := Normalize(raw(map[string]any{"currency": in}))
		require.NotNil(t, rec.Currency, in)
		require.Equal(t, want, *rec.Currency, in)
	}
}

func TestNormalizeCurrencyIgnoresLowercaseCodeWords(t *testing.T) {
	for _, in := range []string{"all amounts shown", "Try again later"} {
		rec, notes := NewNormalizer(Options{}).NormalizeWithNotes(raw(map[string]any{"currency": in}))
		require.Nil(t, rec.Currency, in)
		require.NotEmpty(t, notes, in)
	}
}

func TestNormalizeCategoryReceipt(t *testing.T) {
	rec := Normalize(raw(map[string]any{"category": "receipt"}))
	require.NotNil(t, rec.Category)
	require.Equal(t, constants.Income, *rec.Category)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(Options{DayFirst: true})
	first := n.Normalize(raw(map[string]any{
		"company_name":  "Globex Corp",
		"document_date": "03/04/2024",
		"total_amount":  "1.234,56",
		"currency":      "euro",
		"category":      "revenue",
		"line_items": []any{
			map[string]any{"description": "Consulting", "amount": 1000, "qty": "2"},
		},
		"additional_metrics": map[string]any{"employees": json.Number("120")},
	}))
	second := n.Normalize(ToRaw(first))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalize is not idempotent (-first +second):\n%s", diff)
	}
	require.Equal(t, "2024-04-03", *first.DocumentDate)
	require.Equal(t, constants.Income, *first.Category)
}

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
