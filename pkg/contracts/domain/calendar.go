package domain

import (
	"slices"
	"strings"
	"time"
)

// monthAbbreviations maps the three-letter tokens found in export file names
// to full calendar month names.
var monthAbbreviations = map[string]string{
	"jan": "January",
	"feb": "February",
	"mar": "March",
	"apr": "April",
	"may": "May",
	"jun": "June",
	"jul": "July",
	"aug": "August",
	"sep": "September",
	"oct": "October",
	"nov": "November",
	"dec": "December",
}

// MonthAbbreviations returns the recognised three-letter month tokens in calendar order.
func MonthAbbreviations() []string {
	return []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
}

// ReportingMonthAbbreviations returns the tokens recognised in export file
// names by default: the June to August reporting window. Other months stay
// unresolved unless configured.
func ReportingMonthAbbreviations() []string {
	return []string{"jun", "jul", "aug"}
}

// MonthFromAbbreviation resolves a three-letter token (any case) to a full month name.
func MonthFromAbbreviation(token string) (string, bool) {
	name, ok := monthAbbreviations[strings.ToLower(token)]
	return name, ok
}

// MonthName returns the period label derived from a calendar date.
func MonthName(t time.Time) string {
	return t.Month().String()
}

// MonthIndex returns 1-12 for a full month name (any case) and 0 for anything else.
func MonthIndex(name string) int {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), strings.TrimSpace(name)) {
			return int(m)
		}
	}
	return 0
}

// ComparePeriods orders period labels chronologically. Labels that are not
// month names sort after all months, alphabetically among themselves.
func ComparePeriods(a, b string) int {
	ia, ib := MonthIndex(a), MonthIndex(b)
	switch {
	case ia != 0 && ib != 0 && ia != ib:
		return ia - ib
	case ia != 0 && ib != 0:
		return strings.Compare(a, b)
	case ia != 0:
		return -1
	case ib != 0:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortPeriods sorts period labels in place using ComparePeriods.
func SortPeriods(periods []string) {
	slices.SortStableFunc(periods, ComparePeriods)
}
