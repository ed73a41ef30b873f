package constants

import (
	"sort"
	"strings"
)

// recognizedCurrencies is the set of ISO 4217 codes the pipeline accepts.
var recognizedCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "BGN": {}, "CHF": {}, "JPY": {}, "CNY": {},
	"AUD": {}, "CAD": {}, "NZD": {}, "SEK": {}, "NOK": {}, "DKK": {}, "PLN": {},
	"CZK": {}, "HUF": {}, "RON": {}, "RUB": {}, "TRY": {}, "INR": {}, "ALL": {},
	"MXN": {}, "BRL": {}, "ZAR": {}, "SGD": {}, "HKD": {},
}

// currencyAliases maps symbols and verbal forms (upper-cased) to codes.
var currencyAliases = map[string]string{
	"$":              "USD",
	"US$":            "USD",
	"DOLLAR":         "USD",
	"DOLLARS":        "USD",
	"US DOLLAR":      "USD",
	"US DOLLARS":     "USD",
	"€":              "EUR",
	"EURO":           "EUR",
	"EUROS":          "EUR",
	"£":              "GBP",
	"POUND":          "GBP",
	"POUNDS":         "GBP",
	"STERLING":       "GBP",
	"POUND STERLING": "GBP",
	"ЛВ":             "BGN",
	"ЛВ.":            "BGN",
	"LEV":            "BGN",
	"LEVA":           "BGN",
	"BULGARIAN LEV":  "BGN",
	"BULGARIAN LEVA": "BGN",
	"¥":              "JPY",
	"YEN":            "JPY",
	"₹":              "INR",
	"RUPEE":          "INR",
	"RUPEES":         "INR",
	"FRANC":          "CHF",
	"FRANCS":         "CHF",
	"SWISS FRANC":    "CHF",
}

// CurrencySymbols lists the single-token symbols stripped from amounts.
var CurrencySymbols = []string{"US$", "$", "€", "£", "¥", "₹", "лв.", "лв"}

// IsRecognizedCurrency reports whether code is a known 3-letter code.
func IsRecognizedCurrency(code string) bool {
	_, ok := recognizedCurrencies[code]
	return ok
}

// LookupCurrency resolves a symbol, verbal form or code to a recognized code.
func LookupCurrency(token string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return "", false
	}
	if code, ok := currencyAliases[t]; ok {
		return code, true
	}
	if len(t) == 3 && IsRecognizedCurrency(t) {
		return t, true
	}
	return "", false
}

// LookupCurrencyWord resolves one word taken from a phrase. Symbols and verbal forms
// match in any case, but a bare code must be written in capitals ("All" is English).
func LookupCurrencyWord(word string) (string, bool) {
	w := strings.TrimSpace(word)
	if code, ok := currencyAliases[strings.ToUpper(w)]; ok {
		return code, true
	}
	if len(w) == 3 && w == strings.ToUpper(w) && IsRecognizedCurrency(w) {
		return w, true
	}
	return "", false
}

// MultiWordCurrencyNames lists the verbal forms made of several words, longest first.
func MultiWordCurrencyNames() []string {
	var out []string
	for name := range currencyAliases {
		if strings.Contains(name, " ") {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
