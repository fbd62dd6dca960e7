package memory

import (
	"context"

	appuow "staywise/internal/app/uow"
	domainavailability "staywise/internal/domain/availability"
	domainbooking "staywise/internal/domain/booking"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
	domaintraveler "staywise/internal/domain/traveler"
)

// Store bundles every in-memory repository behind a single handle so a
// factory can hand out units that all observe the same data.
type Store struct {
	Listings       *ListingRepository
	Bookings       *BookingRepository
	BlockedDates   *BlockedDateRepository
	PricingHistory *PricingHistoryRepository
	Profiles       *ProfileRepository
}

// NewStore builds the full set of empty repositories.
func NewStore() *Store {
	return &Store{
		Listings:       NewListingRepository(),
		Bookings:       NewBookingRepository(),
		BlockedDates:   NewBlockedDateRepository(),
		PricingHistory: NewPricingHistoryRepository(),
		Profiles:       NewProfileRepository(),
	}
}

// UoWFactory hands out in-memory units of work. The in-memory variant has
// no real transaction semantics; Commit and Rollback are no-ops and writes
// are visible immediately. Correctness under concurrency comes from the
// listing locker, not from the unit.
type UoWFactory struct {
	store *Store
}

func NewUoWFactory(store *Store) *UoWFactory {
	return &UoWFactory{store: store}
}

func (f *UoWFactory) Begin(ctx context.Context, opts appuow.TxOptions) (appuow.UnitOfWork, error) {
	return &unit{store: f.store}, nil
}

type unit struct {
	store *Store
}

func (u *unit) Listings() domainlistings.Repository { return u.store.Listings }
func (u *unit) Bookings() domainbooking.Repository  { return u.store.Bookings }
func (u *unit) BlockedDates() domainavailability.BlockedDateRepository {
	return u.store.BlockedDates
}
func (u *unit) PricingHistory() domainpricing.HistoryRepository { return u.store.PricingHistory }
func (u *unit) Profiles() domaintraveler.Repository             { return u.store.Profiles }

func (u *unit) Commit(ctx context.Context) error   { return nil }
func (u *unit) Rollback(ctx context.Context) error { return nil }
