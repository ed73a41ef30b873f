package llm

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// PromptVersion is part of the cache key; bump it whenever the prompt text changes.
const PromptVersion = "extract-v1"

const defaultMaxInputChars = 6000

// fieldGuide lists every record field with the type the model should return.
var fieldGuide = []struct{ name, desc string }{
	{entity.FieldCompanyName, "string. The name of the company that issued the document (invoice, report, etc.)."},
	{entity.FieldDocumentDate, "string. The date of the document itself, not today's date. Prefer YYYY-MM-DD."},
	{entity.FieldTotalAmount, "number. The main total amount, without currency symbols or thousands separators."},
	{entity.FieldCurrency, "string. ISO 4217 code (e.g. USD, EUR, BGN) or the symbol shown in the document."},
	{entity.FieldCategory, `string. "expense" or "income".`},
	{entity.FieldLineItems, `array of {"description": string, "amount": number, "quantity": number} or null when the document is not itemized.`},
	{entity.FieldAdditionalMetrics, "object mapping metric name to number or string (revenue, profit, tax rate, ...) or {}."},
}

// BuildSystemPrompt is fixed for a given PromptVersion.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a financial data extraction expert. Always return valid JSON.",
		"Return ONLY a single flat JSON object with exactly these keys: " + fieldNames() + ".",
		"Use null for missing values. Never invent values that are not in the document.",
		"Category must be one of: " + strings.Join(constants.AsStringSlice(), ", ") + ".",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the type hint and the (possibly truncated) document text.
func BuildUserPrompt(doc entity.Document, maxChars int) string {
	if maxChars <= 0 {
		maxChars = defaultMaxInputChars
	}
	var b strings.Builder
	b.WriteString("Extract the following fields and return them as a JSON object:\n")
	for _, f := range fieldGuide {
		b.WriteString("- ")
		b.WriteString(f.name)
		b.WriteString(": ")
		b.WriteString(f.desc)
		b.WriteString("\n")
	}
	if hint := strings.TrimSpace(doc.TypeHint); hint != "" {
		b.WriteString("\nDocument type: ")
		b.WriteString(hint)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(doc.Text)
	b.WriteString("\nDOCUMENT (first ")
	b.WriteString(strconv.Itoa(maxChars))
	b.WriteString(" chars):\n")
	if r := []rune(text); len(r) > maxChars {
		b.WriteString(string(r[:maxChars]))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nJSON OUTPUT:")
	return b.String()
}

func fieldNames() string {
	names := make([]string, 0, len(fieldGuide))
	for _, f := range fieldGuide {
		names = append(names, f.name)
	}
	return strings.Join(names, ", ")
}
