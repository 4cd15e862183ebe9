package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// VALUE COERCION — Locale-Tolerant Numbers and Dates
// ============================================================================
// Prices arrive as "10,5", "1 234,56", "$1,234.56" or "1.234,56" depending on
// which spreadsheet exported the file. Dates arrive as YYYY-MM-DD, YYYY-MM,
// and the ambiguous DD/MM vs MM/DD slash forms. Coercion never guesses a
// value into existence: anything unrecognizable is reported as a failure and
// the caller decides whether to drop the row or leave the field absent.
// ============================================================================

// currencyMarkers are stripped before numeric parsing.
var currencyMarkers = []string{
	"$", "€", "£", "₽", "¥", "usd", "eur", "rub", "руб.", "руб", "р.",
}

// parseNumber coerces a locale-formatted numeric string to float64.
// Returns false for anything that does not parse.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	// Thousands separators: regular and non-breaking spaces.
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal point.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// "10,5" is a decimal comma; "1,234" or "1,234,567" are thousands.
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) != 3 {
			s = parts[0] + "." + parts[1]
		} else if allGroupsOfThree(parts[1:]) {
			s = strings.Join(parts, "")
		} else if len(parts) == 2 {
			s = parts[0] + "." + parts[1]
		} else {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func allGroupsOfThree(groups []string) bool {
	for _, g := range groups {
		if len(g) != 3 {
			return false
		}
	}
	return len(groups) > 0
}

var (
	yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	slashDateRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

// dateLayouts are tried in order after the special-cased forms.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"02.01.2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDate coerces a date string to a calendar date (time truncated).
// "2006-01" resolves to the first of the month. Slash dates are read as
// MM/DD/YYYY unless the first component exceeds 12, which forces DD/MM/YYYY.
// Returns false when no accepted format matches.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if yearMonthRe.MatchString(s) {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if slashDateRe.MatchString(s) {
		parts := strings.Split(s, "/")
		first, _ := strconv.Atoi(parts[0])
		layout := "01/02/2006"
		if first > 12 {
			layout = "02/01/2006"
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
