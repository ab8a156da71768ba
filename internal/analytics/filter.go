package analytics

import "revpulse/pkg/contracts/domain"

// dimension is a restricted set of values, or nil when unrestricted
type dimension map[string]struct{}

func newDimension(values []string) dimension {
	if values == nil {
		return nil
	}
	d := make(dimension, len(values))
	for _, v := range values {
		d[v] = struct{}{}
	}
	return d
}

func (d dimension) allows(value string) bool {
	if d == nil {
		return true
	}
	_, ok := d[value]
	return ok
}

type matcher struct {
	locations dimension
	periods   dimension
	items     dimension
}

func newMatcher(f domain.FilterState) matcher {
	return matcher{
		locations: newDimension(f.Locations),
		periods:   newDimension(f.Periods),
		items:     newDimension(f.Items),
	}
}

func (m matcher) match(rec domain.CanonicalRecord) bool {
	if m.periods != nil && !rec.HasPeriod() {
		return false
	}
	return m.locations.allows(rec.Location) &&
		m.periods.allows(rec.Period) &&
		m.items.allows(rec.Item)
}

// Filter returns the records of d selected by f, in dataset order
func Filter(d *Dataset, f domain.FilterState) []domain.CanonicalRecord {
	out := make([]domain.CanonicalRecord, 0)
	if d == nil {
		return out
	}

	m := newMatcher(f)
	for _, rec := range d.records {
		if m.match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
