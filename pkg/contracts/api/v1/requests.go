// Package api contains the HTTP API contracts of RevPulse.
// Version v1 represents the current stable API version.
package api

import (
	"revpulse/pkg/contracts/domain"
)

// FilterRequest selects the records a report is built from.
//
// An absent (or null) dimension is unrestricted. An empty array restricts
// the dimension to nothing, which yields an empty report.
type FilterRequest struct {
	Locations []string `json:"locations" validate:"omitempty,max=100,unique,dive,label,max=200"`
	Periods   []string `json:"periods" validate:"omitempty,max=100,unique,dive,label,max=200"`
	Items     []string `json:"items" validate:"omitempty,max=500,unique,dive,label,max=200"`
}

// ToFilterState converts the request into a domain filter, keeping the
// distinction between absent and empty dimensions
func (r FilterRequest) ToFilterState() domain.FilterState {
	return domain.FilterState{
		Locations: r.Locations,
		Periods:   r.Periods,
		Items:     r.Items,
	}
}
