package validate

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validRecord() entity.NormalizedRecord {
	return entity.NormalizedRecord{
		CompanyName:  ptr("Acme Trading Ltd"),
		DocumentDate: ptr("2024-01-15"),
		TotalAmount:  dec("7692.00"),
		Currency:     ptr("USD"),
		Category:     ptr(constants.Expense),
		LineItems: []entity.LineItem{
			{Description: "Widgets", Amount: dec("7692.00")},
		},
	}
}

func TestValidateValidRecord(t *testing.T) {
	res := Validate(validRecord())
	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Errors)
}

func TestValidateMissingCompanyName(t *testing.T) {
	rec := validRecord()
	rec.CompanyName = nil

	res := Validate(rec)
	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], entity.FieldCompanyName)
}

func TestValidateCollectsEveryError(t *testing.T) {
	res := Validate(entity.NormalizedRecord{
		Currency: ptr("XYZ"),
		LineItems: []entity.LineItem{
			{Description: "Widgets", Amount: dec("10")},
			{Description: "Discount", Amount: dec("-5")},
		},
	})
	require.False(t, res.IsValid)

	var lineItemErrors []string
	for _, e := range res.Errors {
		if strings.HasPrefix(e, entity.FieldLineItems) {
			lineItemErrors = append(lineItemErrors, e)
		}
	}
	require.Equal(t, []string{"line_items[1].amount: must be non-negative (got -5)"}, lineItemErrors)

	for _, field := range []string{
		entity.FieldCompanyName,
		entity.FieldDocumentDate,
		entity.FieldTotalAmount,
		entity.FieldCurrency,
		entity.FieldCategory,
	} {
		found := false
		for _, e := range res.Errors {
			if strings.HasPrefix(e, field+":") {
				found = true
			}
		}
		require.True(t, found, "expected an error naming %s in %v", field, res.Errors)
	}
	require.Len(t, res.Errors, 6)
}

func TestValidateLineItemRules(t *testing.T) {
	rec := validRecord()
	rec.LineItems = []entity.LineItem{
		{Description: "", Amount: dec("1")},
		{Description: "Freight"},
	}
	res := Validate(rec)
	require.Equal(t, []string{
		"line_items[0].description: is required",
		"line_items[1].amount: must be numeric",
	}, res.Errors)
}

func TestValidateRangeRules(t *testing.T) {
	rec := validRecord()
	rec.TotalAmount = dec("-1")
	rec.DocumentDate = ptr("2024-02-30")
	rec.Currency = ptr("usd")

	res := Validate(rec)
	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 3)
	require.Contains(t, res.Errors[0], entity.FieldDocumentDate)
	require.Contains(t, res.Errors[1], entity.FieldTotalAmount)
	require.Contains(t, res.Errors[2], entity.FieldCurrency)
}
