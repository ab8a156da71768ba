package dataprocessing

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order. Numeric layouts are day-first; Go's "2"
// and "1" accept one or two digits, so "1/6/25" and "01/06/2025" both match.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/06",
	"2/1/06 15:04",
	"2-1-2006",
	"2-1-2006 15:04",
	"2-1-2006 15:04:05",
	"2.1.2006",
	"2.1.2006 15:04",
	"2006-1-2",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 2 Jan 2006",
}

// thousandsGrouped matches digits grouped by commas in threes, e.g. 1,250.50
var thousandsGrouped = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// currencySymbols are stripped from the front of numeric values
var currencySymbols = []string{"£", "$", "€"}

// ParseDate coerces a cell into a timestamp, returning nil when no layout
// matches.
func ParseDate(value string) *time.Time {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ParseNumber coerces a cell into a decimal. A leading currency symbol and
// well-formed thousands separators are removed; any other comma, like
// anything else unparseable, makes the value null.
func ParseNumber(value string) decimal.NullDecimal {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.NullDecimal{}
	}

	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	for _, sym := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			s = strings.TrimPrefix(s, sym)
			break
		}
	}
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		if !thousandsGrouped.MatchString(s) {
			return decimal.NullDecimal{}
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if sign == "+" {
		sign = ""
	}

	d, err := decimal.NewFromString(sign + s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
