// Package normalize converts raw backend output into the canonical record shape.
// Everything here is pure: no I/O, no errors. Values that cannot be canonicalized
// become absent and are reported as notes.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// Options tunes ambiguous conversions.
type Options struct {
	// DayFirst resolves ambiguous slash dates (03/04/2024) as day/month.
	DayFirst bool
}

// Normalizer canonicalizes raw extractions.
type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

var defaultNormalizer = NewNormalizer(Options{})

// Normalize canonicalizes raw with default options.
func Normalize(raw entity.RawExtraction) entity.NormalizedRecord {
	rec, _ := defaultNormalizer.NormalizeWithNotes(raw)
	return rec
}

// Normalize canonicalizes raw and discards the diagnostics.
func (n *Normalizer) Normalize(raw entity.RawExtraction) entity.NormalizedRecord {
	rec, _ := n.NormalizeWithNotes(raw)
	return rec
}

var knownFields = map[string]struct{}{
	entity.FieldCompanyName:       {},
	entity.FieldDocumentDate:      {},
	entity.FieldTotalAmount:       {},
	entity.FieldCurrency:          {},
	entity.FieldCategory:          {},
	entity.FieldLineItems:         {},
	entity.FieldAdditionalMetrics: {},
}

// NormalizeWithNotes canonicalizes raw and returns one note per dropped value.
func (n *Normalizer) NormalizeWithNotes(raw entity.RawExtraction) (entity.NormalizedRecord, []string) {
	rec := entity.NormalizedRecord{
		SourceDocument:   raw.DocumentID,
		ExtractionMethod: raw.Metadata.Method,
	}
	var notes []string
	note := func(format string, args ...any) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}
	f := raw.Fields

	if v, ok := f[entity.FieldCompanyName]; ok && v != nil {
		if s, ok := v.(string); ok {
			if name := collapseSpaces(s); name != "" {
				rec.CompanyName = &name
			}
		} else {
			note("%s: expected text, got %T", entity.FieldCompanyName, v)
		}
	}

	if v, ok := f[entity.FieldDocumentDate]; ok && v != nil {
		if s, ok := v.(string); ok {
			if date, msg, ok := parseDate(s, n.opts.DayFirst); ok {
				rec.DocumentDate = &date
			} else if msg != "" {
				note("%s", msg)
			}
		} else {
			note("%s: expected text, got %T", entity.FieldDocumentDate, v)
		}
	}

	if v, ok := f[entity.FieldTotalAmount]; ok {
		amount, msg := parseAmount(v, false)
		if amount != nil {
			rec.TotalAmount = amount
		} else if msg != "" {
			note("%s: %s", entity.FieldTotalAmount, msg)
		}
	}

	if v, ok := f[entity.FieldCurrency]; ok && v != nil {
		if code, ok := currencyCode(v); ok {
			rec.Currency = &code
		} else if s, isString := v.(string); !isString || strings.TrimSpace(s) != "" {
			note("%s: unrecognized %v", entity.FieldCurrency, v)
		}
	}

	if v, ok := f[entity.FieldCategory]; ok && v != nil {
		s, isString := v.(string)
		if cat, ok := constants.Canonicalize(s); isString && ok {
			rec.Category = &cat
		} else if !isString || strings.TrimSpace(s) != "" {
			note("%s: unrecognized %v", entity.FieldCategory, v)
		}
	}

	if v, ok := f[entity.FieldLineItems]; ok && v != nil {
		items, msgs := lineItems(v)
		rec.LineItems = items
		notes = append(notes, msgs...)
	}

	if v, ok := f[entity.FieldAdditionalMetrics]; ok && v != nil {
		metrics, msgs := additionalMetrics(v)
		rec.AdditionalMetrics = metrics
		notes = append(notes, msgs...)
	}

	var unknown []string
	for k := range f {
		if _, ok := knownFields[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		note("%s: unknown field dropped", k)
	}
	return rec, notes
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// currencyCode tries the whole value first, then each word of it ("EUR (Euro)",
// "All amounts in EUR").
func currencyCode(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = collapseSpaces(s)
	if code, ok := constants.LookupCurrency(s); ok {
		return code, true
	}
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ',' || r == '/'
	}) {
		if code, ok := constants.LookupCurrencyWord(tok); ok {
			return code, true
		}
	}
	return "", false
}

var (
	descriptionKeys = []string{"description", "name", "item"}
	amountKeys      = []string{"amount", "total", "price"}
	quantityKeys    = []string{"quantity", "qty"}
)

func firstKey(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func lineItems(v any) ([]entity.LineItem, []string) {
	var elems []any
	switch t := v.(type) {
	case []any:
		elems = t
	case []map[string]any:
		for _, m := range t {
			elems = append(elems, m)
		}
	default:
		return nil, []string{fmt.Sprintf("%s: expected a list, got %T", entity.FieldLineItems, v)}
	}

	var (
		items []entity.LineItem
		notes []string
	)
	for i, e := range elems {
		m, ok := e.(map[string]any)
		if !ok {
			notes = append(notes, fmt.Sprintf("%s[%d]: not an object, dropped", entity.FieldLineItems, i))
			continue
		}
		var item entity.LineItem
		if d, ok := firstKey(m, descriptionKeys); ok {
			if s, ok := d.(string); ok {
				item.Description = collapseSpaces(s)
			} else if d != nil {
				item.Description = fmt.Sprint(d)
			}
		}
		if a, ok := firstKey(m, amountKeys); ok {
			amount, msg := parseAmount(a, true)
			item.Amount = amount
			if msg != "" {
				notes = append(notes, fmt.Sprintf("%s[%d].amount: %s", entity.FieldLineItems, i, msg))
			}
		}
		if q, ok := firstKey(m, quantityKeys); ok {
			qty, msg := parseAmount(q, true)
			item.Quantity = qty
			if msg != "" {
				notes = append(notes, fmt.Sprintf("%s[%d].quantity: %s", entity.FieldLineItems, i, msg))
			}
		}
		items = append(items, item)
	}
	return items, notes
}

func additionalMetrics(v any) (map[string]any, []string) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, []string{fmt.Sprintf("%s: expected an object, got %T", entity.FieldAdditionalMetrics, v)}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var notes []string
	out := make(map[string]any, len(m))
	for _, k := range keys {
		switch t := m[k].(type) {
		case string:
			if s := collapseSpaces(t); s != "" {
				out[k] = s
			}
		case json.Number:
			if d, err := decimal.NewFromString(t.String()); err == nil {
				out[k] = d
			} else {
				notes = append(notes, fmt.Sprintf("%s.%s: not numeric", entity.FieldAdditionalMetrics, k))
			}
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				notes = append(notes, fmt.Sprintf("%s.%s: non-finite number", entity.FieldAdditionalMetrics, k))
				continue
			}
			out[k] = decimal.NewFromFloat(t)
		case int:
			out[k] = decimal.NewFromInt(int64(t))
		case int64:
			out[k] = decimal.NewFromInt(t)
		case decimal.Decimal:
			out[k] = t
		default:
			notes = append(notes, fmt.Sprintf("%s.%s: unsupported %T dropped", entity.FieldAdditionalMetrics, k, t))
		}
	}
	if len(out) == 0 {
		return nil, notes
	}
	return out, notes
}

// ToRaw renders a normalized record back into raw form. Normalizing the result yields
// the same record.
func ToRaw(rec entity.NormalizedRecord) entity.RawExtraction {
	fields := make(map[string]any)
	if rec.CompanyName != nil {
		fields[entity.FieldCompanyName] = *rec.CompanyName
	}
	if rec.DocumentDate != nil {
		fields[entity.FieldDocumentDate] = *rec.DocumentDate
	}
	if rec.TotalAmount != nil {
		fields[entity.FieldTotalAmount] = *rec.TotalAmount
	}
	if rec.Currency != nil {
		fields[entity.FieldCurrency] = *rec.Currency
	}
	if rec.Category != nil {
		fields[entity.FieldCategory] = string(*rec.Category)
	}
	if len(rec.LineItems) > 0 {
		items := make([]any, 0, len(rec.LineItems))
		for _, li := range rec.LineItems {
			m := map[string]any{"description": li.Description}
			if li.Amount != nil {
				m["amount"] = *li.Amount
			}
			if li.Quantity != nil {
				m["quantity"] = *li.Quantity
			}
			items = append(items, m)
		}
		fields[entity.FieldLineItems] = items
	}
	if len(rec.AdditionalMetrics) > 0 {
		metrics := make(map[string]any, len(rec.AdditionalMetrics))
		for k, v := range rec.AdditionalMetrics {
			metrics[k] = v
		}
		fields[entity.FieldAdditionalMetrics] = metrics
	}
	return entity.RawExtraction{
		DocumentID: rec.SourceDocument,
		Fields:     fields,
		Metadata:   entity.RawMetadata{Method: rec.ExtractionMethod},
	}
}
