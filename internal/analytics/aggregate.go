package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"revpulse/pkg/contracts/domain"
)

type periodKey struct {
	period string
	other  string
}

// Aggregate filters d with f and computes every report aggregate over the
// selected records. Null amounts and quantities count as zero. Records
// without a period feed the totals and the per-location revenue only.
func Aggregate(d *Dataset, f domain.FilterState) domain.AggregationResult {
	return aggregateRecords(Filter(d, f))
}

func aggregateRecords(records []domain.CanonicalRecord) domain.AggregationResult {
	totalRevenue := decimal.Zero
	totalSessions := decimal.Zero

	byLocation := make(map[string]decimal.Decimal)
	byLocationPeriod := make(map[periodKey]decimal.Decimal)
	byPeriodItem := make(map[periodKey]decimal.Decimal)

	for _, rec := range records {
		amount := rec.AmountOrZero()
		qty := rec.QuantityOrZero()

		totalRevenue = totalRevenue.Add(amount)
		totalSessions = totalSessions.Add(qty)
		byLocation[rec.Location] = byLocation[rec.Location].Add(amount)

		if !rec.HasPeriod() {
			continue
		}
		lp := periodKey{period: rec.Period, other: rec.Location}
		byLocationPeriod[lp] = byLocationPeriod[lp].Add(amount)
		pi := periodKey{period: rec.Period, other: rec.Item}
		byPeriodItem[pi] = byPeriodItem[pi].Add(qty)
	}

	result := domain.AggregationResult{
		RecordCount:             len(records),
		TotalRevenue:            totalRevenue,
		TotalSessions:           totalSessions,
		AvgMonthlyRevenue:       decimal.Zero,
		RevenueByLocation:       make([]domain.LocationRevenue, 0, len(byLocation)),
		RevenueByPeriodLocation: make([]domain.PeriodLocationRevenue, 0, len(byLocationPeriod)),
		SessionsByPeriodItem:    make([]domain.PeriodItemSessions, 0, len(byPeriodItem)),
	}

	for loc, rev := range byLocation {
		result.RevenueByLocation = append(result.RevenueByLocation, domain.LocationRevenue{Location: loc, Revenue: rev})
	}
	slices.SortFunc(result.RevenueByLocation, func(a, b domain.LocationRevenue) int {
		return cmp.Compare(a.Location, b.Location)
	})

	if len(byLocationPeriod) > 0 {
		sum := decimal.Zero
		for k, rev := range byLocationPeriod {
			sum = sum.Add(rev)
			result.RevenueByPeriodLocation = append(result.RevenueByPeriodLocation,
				domain.PeriodLocationRevenue{Period: k.period, Location: k.other, Revenue: rev})
		}
		result.AvgMonthlyRevenue = sum.Div(decimal.NewFromInt(int64(len(byLocationPeriod))))
	}
	slices.SortFunc(result.RevenueByPeriodLocation, func(a, b domain.PeriodLocationRevenue) int {
		if c := domain.ComparePeriods(a.Period, b.Period); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})

	for k, qty := range byPeriodItem {
		result.SessionsByPeriodItem = append(result.SessionsByPeriodItem,
			domain.PeriodItemSessions{Period: k.period, Item: k.other, Sessions: qty})
	}
	slices.SortFunc(result.SessionsByPeriodItem, func(a, b domain.PeriodItemSessions) int {
		if c := domain.ComparePeriods(a.Period, b.Period); c != 0 {
			return c
		}
		return cmp.Compare(a.Item, b.Item)
	})

	result.SessionsPivot = pivotSessions(result.SessionsByPeriodItem)
	return result
}

// pivotSessions lays sorted (period, item) sessions out as an item by period
// matrix with zero-filled gaps.
func pivotSessions(rows []domain.PeriodItemSessions) domain.SessionsPivot {
	periodSet := make(map[string]struct{})
	itemSet := make(map[string]struct{})
	for _, r := range rows {
		periodSet[r.Period] = struct{}{}
		itemSet[r.Item] = struct{}{}
	}

	pivot := domain.SessionsPivot{
		Periods:  keys(periodSet),
		Items:    sortedKeys(itemSet),
		Sessions: make([][]decimal.Decimal, 0, len(itemSet)),
	}
	domain.SortPeriods(pivot.Periods)

	col := make(map[string]int, len(pivot.Periods))
	for j, p := range pivot.Periods {
		col[p] = j
	}
	row := make(map[string]int, len(pivot.Items))
	for i, item := range pivot.Items {
		row[item] = i
		cells := make([]decimal.Decimal, len(pivot.Periods))
		for j := range cells {
			cells[j] = decimal.Zero
		}
		pivot.Sessions = append(pivot.Sessions, cells)
	}

	for _, r := range rows {
		pivot.Sessions[row[r.Item]][col[r.Period]] = r.Sessions
	}
	return pivot
}
