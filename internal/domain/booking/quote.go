package booking

import (
	"errors"

	"staywise/internal/domain/shared/daterange"
	"staywise/internal/domain/shared/money"
)

var ErrNoNights = errors.New("booking: stay must cover at least one night")

// serviceFeePercent is the marketplace cut added on top of the subtotal.
const serviceFeePercent = 10

// Quote is the price frozen into a booking at admission time.
type Quote struct {
	Nights     int
	Nightly    money.Money
	Subtotal   money.Money
	ServiceFee money.Money
	Total      money.Money
}

// NewQuote computes the booking-time price: nights times the listing's fixed
// list price, plus a 10% service fee rounded to the minor unit.
func NewQuote(nightly money.Money, dr daterange.DateRange) (Quote, error) {
	nights := dr.Nights()
	if nights < 1 {
		return Quote{}, ErrNoNights
	}
	subtotal := nightly.Multiply(int64(nights))
	fee := subtotal.PercentRounded(serviceFeePercent)
	total, err := subtotal.Add(fee)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Nights:     nights,
		Nightly:    nightly,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      total,
	}, nil
}
