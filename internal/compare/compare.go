package compare

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// Fields lists the fields scored against ground truth, in report order.
var Fields = []string{
	entity.FieldCompanyName,
	entity.FieldDocumentDate,
	entity.FieldTotalAmount,
	entity.FieldCurrency,
	entity.FieldCategory,
	entity.FieldLineItems,
}

var textFields = map[string]bool{
	entity.FieldCompanyName:  true,
	entity.FieldDocumentDate: true,
	entity.FieldCurrency:     true,
	entity.FieldCategory:     true,
}

const absent = "(absent)"

// Compare scores each backend's records against truth, keyed by document ID.
// Results for documents missing from truth are skipped; a failed result is scored
// as a record with every field absent.
func Compare(results []entity.ExtractionResult, truth map[string]entity.NormalizedRecord) entity.ComparisonReport {
	type tally struct {
		docs       int
		matches    map[string]int
		mismatches []entity.FieldMismatch
	}

	var order []constants.Method
	tallies := map[constants.Method]*tally{}
	scoredDocs := map[string]struct{}{}

	for _, res := range results {
		want, ok := truth[res.SourceDocument]
		if !ok {
			continue
		}
		var got entity.NormalizedRecord
		if !res.Failed() && res.Record != nil {
			got = *res.Record
		}

		t, ok := tallies[res.ExtractionMethod]
		if !ok {
			t = &tally{matches: map[string]int{}}
			tallies[res.ExtractionMethod] = t
			order = append(order, res.ExtractionMethod)
		}
		t.docs++
		scoredDocs[res.SourceDocument] = struct{}{}

		for _, field := range Fields {
			if fieldsEqual(field, got, want) {
				t.matches[field]++
				continue
			}
			t.mismatches = append(t.mismatches, mismatch(res.SourceDocument, field, got, want))
		}
	}

	report := entity.ComparisonReport{
		Fields:    append([]string(nil), Fields...),
		Documents: len(scoredDocs),
	}
	for _, m := range order {
		t := tallies[m]
		acc := entity.MethodAccuracy{
			Method:     m,
			Documents:  t.docs,
			PerField:   make(map[string]float64, len(Fields)),
			Mismatches: t.mismatches,
		}
		var sum float64
		for _, field := range Fields {
			v := float64(t.matches[field]) / float64(t.docs)
			acc.PerField[field] = v
			sum += v
		}
		acc.Overall = sum / float64(len(Fields))
		report.Methods = append(report.Methods, acc)
	}
	return report
}

func fieldsEqual(field string, got, want entity.NormalizedRecord) bool {
	switch field {
	case entity.FieldCompanyName:
		return strPtrEqual(got.CompanyName, want.CompanyName)
	case entity.FieldDocumentDate:
		return strPtrEqual(got.DocumentDate, want.DocumentDate)
	case entity.FieldTotalAmount:
		return decPtrEqual(got.TotalAmount, want.TotalAmount)
	case entity.FieldCurrency:
		return strPtrEqual(got.Currency, want.Currency)
	case entity.FieldCategory:
		if got.Category == nil || want.Category == nil {
			return got.Category == nil && want.Category == nil
		}
		return *got.Category == *want.Category
	case entity.FieldLineItems:
		return lineItemsEqual(got.LineItems, want.LineItems)
	}
	return false
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func decPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// lineItemsEqual compares (description, amount) pairs in order; quantity is ignored.
func lineItemsEqual(a, b []entity.LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description || !decPtrEqual(a[i].Amount, b[i].Amount) {
			return false
		}
	}
	return true
}

func mismatch(doc, field string, got, want entity.NormalizedRecord) entity.FieldMismatch {
	g, w := render(field, got), render(field, want)
	m := entity.FieldMismatch{Document: doc, Field: field, Got: g, Want: w}
	if textFields[field] && g != absent && w != absent {
		sim := matchr.JaroWinkler(strings.ToLower(g), strings.ToLower(w), false)
		m.Similarity = &sim
	}
	return m
}

func render(field string, r entity.NormalizedRecord) string {
	switch field {
	case entity.FieldCompanyName:
		return strOrAbsent(r.CompanyName)
	case entity.FieldDocumentDate:
		return strOrAbsent(r.DocumentDate)
	case entity.FieldTotalAmount:
		if r.TotalAmount == nil {
			return absent
		}
		return r.TotalAmount.String()
	case entity.FieldCurrency:
		return strOrAbsent(r.Currency)
	case entity.FieldCategory:
		if r.Category == nil {
			return absent
		}
		return string(*r.Category)
	case entity.FieldLineItems:
		if len(r.LineItems) == 0 {
			return absent
		}
		parts := make([]string, len(r.LineItems))
		for i, li := range r.LineItems {
			amt := absent
			if li.Amount != nil {
				amt = li.Amount.String()
			}
			parts[i] = fmt.Sprintf("%s=%s", li.Description, amt)
		}
		return strings.Join(parts, "; ")
	}
	return absent
}

func strOrAbsent(s *string) string {
	if s == nil {
		return absent
	}
	return *s
}
