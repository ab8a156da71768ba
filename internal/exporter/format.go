package exporter

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// formatDate renders a date as 2006-01-02, adding the clock time when the
// source carried one. Null dates render empty.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

// formatDecimal renders a nullable decimal without exponent or padding
func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
