package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// fieldSynonyms maps keys models commonly use instead of the record field names.
// Earlier entries win when several synonyms of one field are present.
var fieldSynonyms = []struct{ from, to string }{
	{"company", entity.FieldCompanyName},
	{"vendor", entity.FieldCompanyName},
	{"merchant_name", entity.FieldCompanyName},
	{"date", entity.FieldDocumentDate},
	{"tx_date", entity.FieldDocumentDate},
	{"total", entity.FieldTotalAmount},
	{"amount", entity.FieldTotalAmount},
	{"currency_code", entity.FieldCurrency},
	{"items", entity.FieldLineItems},
	{"metrics", entity.FieldAdditionalMetrics},
}

// ParseResponse decodes the JSON object in a model response. Text around the object
// (prose, code fences) is ignored: the span from the first '{' to the last '}' is decoded.
// Numbers are kept as json.Number so amounts keep their exact digits.
func ParseResponse(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start != -1 && end > start {
		s = s[start : end+1]
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is a JSON %T, want an object", v)
	}
	return m, nil
}

// SanitizeFields renames known synonyms to record field names and trims string values.
// It returns the list of changes made, e.g. "total->total_amount".
func SanitizeFields(m map[string]any) []string {
	var changed []string
	for _, syn := range fieldSynonyms {
		v, ok := m[syn.from]
		if !ok {
			continue
		}
		// never overwrite a value already present under the canonical name
		if _, exists := m[syn.to]; !exists {
			m[syn.to] = v
		}
		delete(m, syn.from)
		changed = append(changed, syn.from+"->"+syn.to)
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			m[k] = strings.TrimSpace(s)
		}
	}
	return changed
}
