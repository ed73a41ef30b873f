// Package pattern is the rule-based extraction backend: ordered regular-expression
// recognizers over the cleaned document text.
package pattern

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// ModelName is reported in result rows for pattern extractions.
const ModelName = "regex"

type Backend struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

func (b *Backend) Method() constants.Method { return constants.MethodPattern }

func (b *Backend) ModelName() string { return ModelName }

// Extract runs every recognizer once. Fields without a match are left out of the
// mapping; the only failure is a document with no text.
func (b *Backend) Extract(ctx context.Context, doc entity.Document) (entity.RawExtraction, error) {
	if err := ctx.Err(); err != nil {
		return entity.RawExtraction{}, common.NewExtractionError("pattern extraction cancelled", err)
	}
	text := cleanText(doc.Text)
	if text == "" {
		return entity.RawExtraction{}, common.NewExtractionError("document text is empty", nil)
	}
	start := time.Now()

	fields := make(map[string]any)
	if v, ok := findCompany(text); ok {
		fields[entity.FieldCompanyName] = v
	}
	if v, ok := findDate(text); ok {
		fields[entity.FieldDocumentDate] = v
	}
	if v, ok := findTotal(text); ok {
		fields[entity.FieldTotalAmount] = v
	}
	if v, ok := findCurrency(text); ok {
		fields[entity.FieldCurrency] = v
	}
	if v, ok := findCategory(text); ok {
		fields[entity.FieldCategory] = v
	}

	conf := heuristicConfidence(text, fields)
	common.LoggerFromContext(ctx, b.logger).Debug("pattern.extract.done",
		"fields", len(fields), "confidence", conf, "elapsed_ms", time.Since(start).Milliseconds())

	return entity.RawExtraction{
		DocumentID: doc.ID,
		Fields:     fields,
		Metadata: entity.RawMetadata{
			Method:     constants.MethodPattern,
			Model:      ModelName,
			Confidence: &conf,
		},
	}, nil
}

var (
	reFromLabel    = regexp.MustCompile(`(?im)^[^\S\n]*From:[^\S\n]*([^\n]+)`)
	reLegalEntity  = regexp.MustCompile(`(?m)^[^\S\n]*([A-Z][A-Za-z0-9 &.,'-]*?\b(?:Ltd|Inc|Corp|JSC|LLC|GmbH)\.?)[^\S\n]*$`)
	legalSuffixes  = []string{"Ltd", "Inc", "Corp", "JSC", "LLC", "GmbH"}
	companyScanMax = 10
)

func findCompany(text string) (string, bool) {
	if m := reFromLabel.FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}
	if m := reLegalEntity.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	lines := strings.Split(text, "\n")
	if len(lines) > companyScanMax {
		lines = lines[:companyScanMax]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 5 || line[0] < 'A' || line[0] > 'Z' {
			continue
		}
		for _, suffix := range legalSuffixes {
			if strings.Contains(line, suffix) {
				return line, true
			}
		}
	}
	return "", false
}

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December`

var (
	reDateLabel    = regexp.MustCompile(`(?i)\bDate:[^\S\n]*((?:[A-Za-z]+,?[^\S\n]+)?[A-Za-z]+\.?[^\S\n]+\d{1,2}(?:st|nd|rd|th)?,?[^\S\n]+\d{4}|\d{1,2}[^\S\n]+[A-Za-z]+\.?[^\S\n]+\d{4}|\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}|\d{4}-\d{2}-\d{2})`)
	reDatePriority = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:` + monthNames + `)[^\S\n]+\d{1,2}(?:st|nd|rd|th)?,?[^\S\n]+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`),
	}
)

func findDate(text string) (string, bool) {
	for _, loc := range reDateLabel.FindAllStringSubmatchIndex(text, -1) {
		// "Due Date:" names the payment deadline, not the document date
		if strings.HasSuffix(strings.ToLower(strings.TrimRight(text[:loc[0]], " ")), "due") {
			continue
		}
		return text[loc[2]:loc[3]], true
	}
	for _, re := range reDatePriority {
		if v := re.FindString(text); v != "" {
			return v, true
		}
	}
	return "", false
}

var reTotal = regexp.MustCompile(`(?i:\b(grand[^\S\n]+total|total[^\S\n]+amount[^\S\n]+due|total[^\S\n]+amount|total[^\S\n]+due|amount[^\S\n]+due|total)\b)(?:[^\S\n]*\([^)\n]*\))?[^\S\n]*:?[^\S\n]*((?:[A-Z]{3}[^\S\n]?)?(?:US\$|[$€£¥₹]|лв\.?)?[^\S\n]?-?\d+(?:[ ,.'\x{00A0}]\d{3})*(?:[.,]\d+)?\.?(?:[^\S\n]?(?:[A-Z]{3}\b|лв\.?|[$€£]))?)`)

// findTotal returns the raw text of the labeled total closest to the end of the document.
// Subtotals never count. Without a labeled total the field stays absent.
func findTotal(text string) (string, bool) {
	var last string
	for _, loc := range reTotal.FindAllStringSubmatchIndex(text, -1) {
		before := strings.ToLower(text[max(0, loc[0]-4):loc[0]])
		if strings.HasSuffix(before, "sub-") || strings.HasSuffix(before, "sub ") {
			continue
		}
		last = strings.TrimSpace(text[loc[4]:loc[5]])
	}
	return last, last != ""
}

var (
	reCurrencyLabel  = regexp.MustCompile(`(?i)\b(?:currency|amounts?[^\S\n]+in)[^\S\n]*:[^\S\n]*([^\n]+)`)
	reSymbolBefore   = regexp.MustCompile(`(US\$|[$€£¥₹])[^\S\n]?\d`)
	reSymbolAfter    = regexp.MustCompile(`\d[^\S\n]?(лв\.?|€)`)
	reCurrencyCodeRE = regexp.MustCompile(`\b([A-Z]{3})\b`)
)

func findCurrency(text string) (string, bool) {
	if m := reCurrencyLabel.FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}
	before := reSymbolBefore.FindStringSubmatchIndex(text)
	after := reSymbolAfter.FindStringSubmatchIndex(text)
	switch {
	case before != nil && (after == nil || before[0] <= after[0]):
		return text[before[2]:before[3]], true
	case after != nil:
		return text[after[2]:after[3]], true
	}
	for _, m := range reCurrencyCodeRE.FindAllStringSubmatch(text, -1) {
		if constants.IsRecognizedCurrency(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

var (
	expenseKeywords = []string{"invoice", "bill", "expense", "cost", "payment due"}
	incomeKeywords  = []string{"revenue", "income", "sales", "profit", "receipt"}
)

// findCategory scores keyword presence; a tie leaves the category absent.
func findCategory(text string) (string, bool) {
	lower := strings.ToLower(text)
	score := func(keywords []string) int {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		return n
	}
	expense, income := score(expenseKeywords), score(incomeKeywords)
	switch {
	case expense > income:
		return string(constants.Expense), true
	case income > expense:
		return string(constants.Income), true
	}
	return "", false
}
