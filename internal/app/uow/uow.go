package uow

import (
	"context"

	domainavailability "staywise/internal/domain/availability"
	domainbooking "staywise/internal/domain/booking"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
	domaintraveler "staywise/internal/domain/traveler"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
// Listing price apply and its pricing history append commit together or
// not at all.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	BlockedDates() domainavailability.BlockedDateRepository
	PricingHistory() domainpricing.HistoryRepository
	Profiles() domaintraveler.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
