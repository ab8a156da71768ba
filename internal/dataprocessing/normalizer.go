package dataprocessing

import (
	"strings"

	"revpulse/pkg/contracts/domain"
)

// CoercionStats counts the values that degraded to null while normalizing
// one table.
type CoercionStats struct {
	Rows           int `json:"rows"`
	NullDates      int `json:"null_dates"`
	NullQuantities int `json:"null_quantities"`
	NullAmounts    int `json:"null_amounts"`
	NullPeriods    int `json:"null_periods"`
}

// Nulls returns the null counts keyed by field name
func (s CoercionStats) Nulls() map[string]int {
	return map[string]int{
		"date":     s.NullDates,
		"quantity": s.NullQuantities,
		"amount":   s.NullAmounts,
		"period":   s.NullPeriods,
	}
}

// Add accumulates other into s
func (s *CoercionStats) Add(other CoercionStats) {
	s.Rows += other.Rows
	s.NullDates += other.NullDates
	s.NullQuantities += other.NullQuantities
	s.NullAmounts += other.NullAmounts
	s.NullPeriods += other.NullPeriods
}

// Normalize maps every row of table onto a CanonicalRecord. The location
// comes from locationHint alone (empty stays empty until the dataset is
// built). The period comes from periodHint when set, otherwise from the
// month of the row's own date.
func Normalize(table *ParsedTable, locationHint, periodHint string) ([]domain.CanonicalRecord, CoercionStats) {
	var stats CoercionStats
	if table == nil {
		return nil, stats
	}

	locationHint = strings.TrimSpace(locationHint)
	periodHint = strings.TrimSpace(periodHint)

	records := make([]domain.CanonicalRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := domain.CanonicalRecord{
			Date:     ParseDate(row.Date),
			Item:     strings.TrimSpace(row.Item),
			Quantity: ParseNumber(row.Quantity),
			Amount:   ParseNumber(row.Amount),
			Location: locationHint,
			Period:   periodHint,
		}
		if rec.Period == "" && rec.Date != nil {
			rec.Period = domain.MonthName(*rec.Date)
		}

		if rec.Date == nil {
			stats.NullDates++
		}
		if !rec.Quantity.Valid {
			stats.NullQuantities++
		}
		if !rec.Amount.Valid {
			stats.NullAmounts++
		}
		if rec.Period == "" {
			stats.NullPeriods++
		}
		records = append(records, rec)
	}
	stats.Rows = len(records)

	return records, stats
}
