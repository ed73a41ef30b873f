package constants

import "strings"

// AllowedExtensions holds the default document extensions picked up from a directory.
var AllowedExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Document type hints passed to the model backend.
const (
	DocTypeInvoice        = "invoice"
	DocTypeFinancialTable = "financial_table"
	DocTypeReport         = "report"
)

// GuessDocType derives a type hint from a document name; "" when nothing matches.
func GuessDocType(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "invoice"), strings.Contains(n, "receipt"), strings.Contains(n, "bill"):
		return DocTypeInvoice
	case strings.Contains(n, "financial_table"), strings.Contains(n, "table"), strings.Contains(n, "quarter"):
		return DocTypeFinancialTable
	case strings.Contains(n, "report"):
		return DocTypeReport
	}
	return ""
}
