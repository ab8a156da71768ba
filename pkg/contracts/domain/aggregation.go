package domain

import (
	"github.com/shopspring/decimal"
)

// AggregationResult is derived from a dataset and a filter and is never mutated.
type AggregationResult struct {
	RecordCount             int                     `json:"record_count"`
	TotalRevenue            decimal.Decimal         `json:"total_revenue"`
	TotalSessions           decimal.Decimal         `json:"total_sessions"`
	AvgMonthlyRevenue       decimal.Decimal         `json:"avg_monthly_revenue"`
	RevenueByLocation       []LocationRevenue       `json:"revenue_by_location"`
	RevenueByPeriodLocation []PeriodLocationRevenue `json:"revenue_by_period_location"`
	SessionsByPeriodItem    []PeriodItemSessions    `json:"sessions_by_period_item"`
	SessionsPivot           SessionsPivot           `json:"sessions_pivot"`
}

// LocationRevenue is the revenue of one location.
type LocationRevenue struct {
	Location string          `json:"location"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// PeriodLocationRevenue is the revenue of one location in one period.
type PeriodLocationRevenue struct {
	Period   string          `json:"period"`
	Location string          `json:"location"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// PeriodItemSessions is the quantity sold of one item in one period.
type PeriodItemSessions struct {
	Period   string          `json:"period"`
	Item     string          `json:"item"`
	Sessions decimal.Decimal `json:"sessions"`
}

// SessionsPivot is an item by period matrix of sessions. Sessions[i][j] is the
// quantity of Items[i] in Periods[j], zero when the item had no sales.
type SessionsPivot struct {
	Periods  []string            `json:"periods"`
	Items    []string            `json:"items"`
	Sessions [][]decimal.Decimal `json:"sessions"`
}
