package constants

import (
	"strings"
)

type Category string

const (
	Expense Category = "expense"
	Income  Category = "income"
)

var allCategories = []Category{
	Expense,
	Income,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsValid reports whether c is one of the enumerated categories.
func (c Category) IsValid() bool {
	for _, cat := range allCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// keyword lists are checked in order; expense terms win over income terms when both appear.
var (
	expenseTerms = []string{"expense", "cost", "expenditure", "spending", "outgoing", "purchase", "bill", "invoice", "payable"}
	incomeTerms  = []string{"income", "revenue", "earning", "profit", "sales", "incoming", "receivable", "receipt"}
)

// Canonicalize maps a free-text label to the category enum by keyword matching.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	for _, term := range expenseTerms {
		if strings.Contains(normalized, term) {
			return Expense, true
		}
	}
	for _, term := range incomeTerms {
		if strings.Contains(normalized, term) {
			return Income, true
		}
	}
	return "", false
}
