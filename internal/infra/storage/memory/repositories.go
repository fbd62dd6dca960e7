package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	domainavailability "staywise/internal/domain/availability"
	domainbooking "staywise/internal/domain/booking"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
	domaintraveler "staywise/internal/domain/traveler"
)

// ListingRepository is an in-memory implementation for tests and demos.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
	order []domainlistings.ListingID
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a listing or the domain not-found error.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return listing, nil
}

// Save stores/updates a listing entry.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[listing.ID]; !ok {
		r.order = append(r.order, listing.ID)
	}
	listing.Version++
	r.items[listing.ID] = listing
	return nil
}

// All returns listings in insertion order so ranking stability is observable.
func (r *ListingRepository) All(ctx context.Context) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
	order []domainbooking.BookingID
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bk, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return bk, nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, bk *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[bk.ID]; !ok {
		r.order = append(r.order, bk.ID)
	}
	bk.Version++
	r.items[bk.ID] = bk
	return nil
}

// ByListing returns all bookings for a listing in insertion order.
func (r *BookingRepository) ByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, id := range r.order {
		if bk := r.items[id]; bk.ListingID == listingID {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(guestID)
	if id == "" {
		return nil, errors.New("memory: guest id required")
	}
	var matches []*domainbooking.Booking
	for _, key := range r.order {
		if bk := r.items[key]; bk.GuestID == id {
			matches = append(matches, bk)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// BlockedDateRepository keeps blocked calendar days in memory.
type BlockedDateRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID][]domainavailability.BlockedDate
}

func NewBlockedDateRepository() *BlockedDateRepository {
	return &BlockedDateRepository{items: make(map[domainlistings.ListingID][]domainavailability.BlockedDate)}
}

func (r *BlockedDateRepository) ForListing(ctx context.Context, id domainlistings.ListingID) ([]domainavailability.BlockedDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domainavailability.BlockedDate(nil), r.items[id]...), nil
}

func (r *BlockedDateRepository) Add(ctx context.Context, blocked domainavailability.BlockedDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items[blocked.ListingID] {
		if existing.Date.Equal(blocked.Date) {
			return nil
		}
	}
	r.items[blocked.ListingID] = append(r.items[blocked.ListingID], blocked)
	return nil
}

func (r *BlockedDateRepository) Remove(ctx context.Context, id domainlistings.ListingID, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	days := r.items[id]
	for i, existing := range days {
		if existing.Date.Equal(date) {
			r.items[id] = append(days[:i], days[i+1:]...)
			return nil
		}
	}
	return nil
}

// PricingHistoryRepository keeps the append-only audit trail in memory.
type PricingHistoryRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID][]domainpricing.HistoryEntry
}

func NewPricingHistoryRepository() *PricingHistoryRepository {
	return &PricingHistoryRepository{items: make(map[domainlistings.ListingID][]domainpricing.HistoryEntry)}
}

func (r *PricingHistoryRepository) Append(ctx context.Context, entry domainpricing.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[entry.ListingID] = append(r.items[entry.ListingID], entry)
	return nil
}

func (r *PricingHistoryRepository) Latest(ctx context.Context, id domainlistings.ListingID) (*domainpricing.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.items[id]
	if len(entries) == 0 {
		return nil, nil
	}
	latest := entries[len(entries)-1]
	return &latest, nil
}

func (r *PricingHistoryRepository) ForListing(ctx context.Context, id domainlistings.ListingID) ([]domainpricing.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domainpricing.HistoryEntry(nil), r.items[id]...), nil
}

// ProfileRepository keeps traveler profiles in memory.
type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]*domaintraveler.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{items: make(map[string]*domaintraveler.Profile)}
}

func (r *ProfileRepository) ByUser(ctx context.Context, userID string) (*domaintraveler.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.items[userID]
	if !ok {
		return nil, domaintraveler.ErrProfileNotFound
	}
	return profile, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domaintraveler.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[profile.UserID] = profile
	return nil
}
