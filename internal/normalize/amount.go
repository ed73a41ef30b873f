package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/extraction-bench/constants"
)

var (
	reLetters     = regexp.MustCompile(`\p{L}+`)
	reAmountSpace = regexp.MustCompile(`[\s\x{00A0}\x{2009}\x{202F}']+`)
	rePlainNumber = regexp.MustCompile(`^\d+(\.\d+)?$`)

	reCurrencyPhrase = multiWordCurrencyRegexp()
)

// multiWordCurrencyRegexp matches verbal forms such as "US dollars" or "pound sterling".
func multiWordCurrencyRegexp() *regexp.Regexp {
	names := constants.MultiWordCurrencyNames()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(n), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// parseAmount converts a raw amount to a decimal. Negative results are rejected unless
// allowNegative is set. A nil result with an empty note means the value was absent.
func parseAmount(v any, allowNegative bool) (*decimal.Decimal, string) {
	var (
		d   decimal.Decimal
		err error
	)
	switch t := v.(type) {
	case nil:
		return nil, ""
	case decimal.Decimal:
		d = t
	case *decimal.Decimal:
		if t == nil {
			return nil, ""
		}
		d = *t
	case json.Number:
		d, err = decimal.NewFromString(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Sprintf("non-finite number %v", t)
		}
		d = decimal.NewFromFloat(t)
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Sprintf("non-finite number %v", t)
		}
		d = decimal.NewFromFloat32(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case string:
		return parseAmountString(t, allowNegative)
	default:
		return nil, fmt.Sprintf("unsupported type %T", v)
	}
	if err != nil {
		return nil, fmt.Sprintf("not numeric: %v", v)
	}
	if d.IsNegative() && !allowNegative {
		return nil, fmt.Sprintf("negative amount %s", d.String())
	}
	return &d, ""
}

func parseAmountString(raw string, allowNegative bool) (*decimal.Decimal, string) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil, ""
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	for _, sym := range constants.CurrencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = reCurrencyPhrase.ReplaceAllString(s, " ")
	// currency codes and verbal forms ("EUR", "dollars") are the only letters allowed
	var bad string
	s = reLetters.ReplaceAllStringFunc(s, func(tok string) string {
		if _, ok := constants.LookupCurrency(tok); ok {
			return ""
		}
		bad = tok
		return tok
	})
	if bad != "" {
		return nil, fmt.Sprintf("not numeric: %q", raw)
	}
	s = reAmountSpace.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasSuffix(s, "-") {
		negative = !negative
		s = s[:len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")
	// a trailing period is a sentence terminator, not a decimal point
	s = strings.TrimSuffix(s, ".")

	s = canonicalSeparators(s)
	if !rePlainNumber.MatchString(s) {
		return nil, fmt.Sprintf("not numeric: %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Sprintf("not numeric: %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	if d.IsNegative() && !allowNegative {
		return nil, fmt.Sprintf("negative amount %q", raw)
	}
	return &d, ""
}

// canonicalSeparators rewrites US (1,234.56) and European (1.234,56) grouping to a
// plain decimal with '.' as the decimal point.
func canonicalSeparators(s string) string {
	periods := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case periods == 0 && commas == 0:
		return s
	case periods > 1:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case periods == 1 && commas == 1:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", ".")
	case commas == 1:
		// one comma: decimal when at most two digits follow it, grouping otherwise
		if len(s)-strings.LastIndex(s, ",") <= 3 {
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	}
	return s
}
