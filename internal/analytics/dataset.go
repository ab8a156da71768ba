package analytics

import (
	"slices"
	"strings"

	"revpulse/pkg/contracts/domain"
)

// Dataset is the merged, read-only record set of one load
type Dataset struct {
	records []domain.CanonicalRecord
	options domain.FilterOptions
}

// Build concatenates batches in order and fills missing locations and blank
// items with their Unknown labels, so every record is selectable through
// Distinct. Records are never deduplicated.
func Build(batches ...[]domain.CanonicalRecord) *Dataset {
	n := 0
	for _, b := range batches {
		n += len(b)
	}

	records := make([]domain.CanonicalRecord, 0, n)
	for _, b := range batches {
		for _, rec := range b {
			if strings.TrimSpace(rec.Location) == "" {
				rec.Location = domain.UnknownLocation
			}
			if rec.Item == "" {
				rec.Item = domain.UnknownItem
			}
			records = append(records, rec)
		}
	}

	d := &Dataset{records: records}
	d.options = distinct(records)
	return d
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of the records in dataset order
func (d *Dataset) Records() []domain.CanonicalRecord {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Distinct returns the distinct filter values present in d. Records without
// a period contribute nothing to that dimension.
func Distinct(d *Dataset) domain.FilterOptions {
	if d == nil {
		return distinct(nil)
	}
	return domain.FilterOptions{
		Locations: slices.Clone(d.options.Locations),
		Periods:   slices.Clone(d.options.Periods),
		Items:     slices.Clone(d.options.Items),
	}
}

func distinct(records []domain.CanonicalRecord) domain.FilterOptions {
	locations := make(map[string]struct{})
	periods := make(map[string]struct{})
	items := make(map[string]struct{})

	for _, rec := range records {
		locations[rec.Location] = struct{}{}
		if rec.HasPeriod() {
			periods[rec.Period] = struct{}{}
		}
		items[rec.Item] = struct{}{}
	}

	opts := domain.FilterOptions{
		Locations: sortedKeys(locations),
		Periods:   keys(periods),
		Items:     sortedKeys(items),
	}
	domain.SortPeriods(opts.Periods)
	return opts
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := keys(m)
	slices.Sort(out)
	return out
}
