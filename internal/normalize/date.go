package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var (
	reOrdinal  = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	reWeekday  = regexp.MustCompile(`(?i)^(mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)[a-z]*\.?,?\s+`)
	reISODate  = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[T ].*)?$`)
	reNumeric  = regexp.MustCompile(`^(\d{1,2})([/.\-])(\d{1,2})([/.\-])(\d{4})$`)
	reMonthDY  = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
	reDayMonY  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)
	reYearOnly = regexp.MustCompile(`\b(\d{4})\b`)
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// parseDate resolves the supported textual forms to YYYY-MM-DD. When the input cannot
// be resolved it returns ok=false and a note naming the literal year, if one was present.
func parseDate(s string, dayFirst bool) (string, string, bool) {
	in := strings.TrimSpace(s)
	if in == "" {
		return "", "", false
	}
	cleaned := reOrdinal.ReplaceAllString(in, "$1")
	cleaned = reWeekday.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if m := reISODate.FindStringSubmatch(cleaned); m != nil {
		return calendarDate(in, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reMonthDY.FindStringSubmatch(cleaned); m != nil {
		if mon, ok := months[strings.ToLower(m[1])]; ok {
			return calendarDate(in, atoi(m[3]), int(mon), atoi(m[2]))
		}
	}
	if m := reDayMonY.FindStringSubmatch(cleaned); m != nil {
		if mon, ok := months[strings.ToLower(m[2])]; ok {
			return calendarDate(in, atoi(m[3]), int(mon), atoi(m[1]))
		}
	}
	if m := reNumeric.FindStringSubmatch(cleaned); m != nil && m[2] == m[4] {
		a, b, year := atoi(m[1]), atoi(m[3]), atoi(m[5])
		var day, month int
		switch {
		case a > 12 && b > 12:
			return "", unresolved(in), false
		case a > 12:
			day, month = a, b
		case b > 12:
			month, day = a, b
		case m[2] == "/" && !dayFirst:
			month, day = a, b
		default:
			// dotted and dashed numeric dates follow the day-first convention
			day, month = a, b
		}
		return calendarDate(in, year, month, day)
	}
	return "", unresolved(in), false
}

func calendarDate(literal string, year, month, day int) (string, string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", unresolved(literal), false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", unresolved(literal), false
	}
	return t.Format(isoLayout), "", true
}

func unresolved(literal string) string {
	if m := reYearOnly.FindStringSubmatch(literal); m != nil {
		return fmt.Sprintf("document_date: could not resolve %q (year %s)", literal, m[1])
	}
	return fmt.Sprintf("document_date: could not resolve %q", literal)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
