package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// UnknownLocation labels records whose source carried no resolvable location.
	UnknownLocation = "Unknown"
	// UnknownItem labels records whose item cell was blank.
	UnknownItem = "Unknown"
)

// CanonicalRecord is one normalized point-of-sale transaction.
//
// Date, Quantity and Amount are null when the source cell could not be
// coerced. Location and Period use the empty string as their null value;
// Location and a blank Item are filled with UnknownLocation and UnknownItem
// when the dataset is built, Period
// stays empty when neither a source hint nor the date resolved it.
type CanonicalRecord struct {
	Date     *time.Time          `json:"date"`
	Item     string              `json:"item"`
	Quantity decimal.NullDecimal `json:"quantity"`
	Amount   decimal.NullDecimal `json:"amount"`
	Location string              `json:"location"`
	Period   string              `json:"period,omitempty"`
}

// HasPeriod reports whether the record carries a period label.
func (r CanonicalRecord) HasPeriod() bool {
	return r.Period != ""
}

// AmountOrZero returns the amount, treating null as zero.
func (r CanonicalRecord) AmountOrZero() decimal.Decimal {
	if !r.Amount.Valid {
		return decimal.Zero
	}
	return r.Amount.Decimal
}

// QuantityOrZero returns the quantity, treating null as zero.
func (r CanonicalRecord) QuantityOrZero() decimal.Decimal {
	if !r.Quantity.Valid {
		return decimal.Zero
	}
	return r.Quantity.Decimal
}
