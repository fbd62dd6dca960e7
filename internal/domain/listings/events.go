package listings

import (
	"time"

	"staywise/internal/domain/shared/money"
)

type PriceApplied struct {
	ListingID   ListingID
	Price       money.Money
	DemandScore int
	At          time.Time
}

func (e PriceApplied) EventName() string     { return "pricing.applied" }
func (e PriceApplied) AggregateID() string   { return string(e.ListingID) }
func (e PriceApplied) OccurredAt() time.Time { return e.At }
