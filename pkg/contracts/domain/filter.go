package domain

// FilterState selects the records that feed an aggregation.
//
// A nil slice leaves its dimension unrestricted, which is the default and
// covers the full universe of values. A non-nil slice restricts the dimension
// to its members, so an empty non-nil slice selects nothing. Records without
// a period never match a restricted period dimension.
type FilterState struct {
	Locations []string `json:"locations"`
	Periods   []string `json:"periods"`
	Items     []string `json:"items"`
}

// DefaultFilter returns a filter with every dimension unrestricted.
func DefaultFilter() FilterState {
	return FilterState{}
}

// IsDefault reports whether no dimension is restricted.
func (f FilterState) IsDefault() bool {
	return f.Locations == nil && f.Periods == nil && f.Items == nil
}

// FilterOptions lists the distinct values available to each filter dimension.
// Periods are in calendar order; locations and items are sorted lexically.
type FilterOptions struct {
	Locations []string `json:"locations"`
	Periods   []string `json:"periods"`
	Items     []string `json:"items"`
}
