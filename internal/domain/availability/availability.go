// Package availability decides whether a date range can be admitted for a
// listing. All checks are pure; callers load state and hold the per-listing
// admission lock before asking.
package availability

import (
	"context"
	"time"

	"staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/daterange"
)

// BlockedDate is one calendar day a host has taken off the market.
type BlockedDate struct {
	ListingID listings.ListingID
	Date      time.Time
	Reason    string
	CreatedAt time.Time
}

type BlockedDateRepository interface {
	ForListing(ctx context.Context, id listings.ListingID) ([]BlockedDate, error)
	Add(ctx context.Context, blocked BlockedDate) error
	Remove(ctx context.Context, id listings.ListingID, date time.Time) error
}

// Request is an admission attempt against a listing's calendar.
type Request struct {
	GuestID string
	Range   daterange.DateRange
	Guests  int
}

// ValidateRequest fails fast on malformed input, before any conflict lookups.
// Order: range shape, check-in not in the past, guest count, self-booking.
func ValidateRequest(listing *listings.Listing, req Request, now time.Time) error {
	if err := req.Range.Validate(); err != nil {
		return faults.Validationf("check-out must be after check-in")
	}
	if startOfDay(req.Range.CheckIn).Before(startOfDay(now)) {
		return faults.Validationf("check-in date is in the past")
	}
	if req.Guests < 1 || req.Guests > listing.MaxGuests {
		return faults.Validationf("guest count must be between 1 and %d", listing.MaxGuests)
	}
	if req.GuestID == string(listing.Host) {
		return faults.Validationf("hosts cannot book their own listing")
	}
	return nil
}

// CheckRange reports a conflict when the requested range overlaps any
// pending/confirmed booking or touches a blocked calendar day. The overlap
// predicate is half-open, so back-to-back stays sharing a boundary day admit.
func CheckRange(r daterange.DateRange, existing []*booking.Booking, blocked []BlockedDate) error {
	for _, day := range blocked {
		if r.ContainsDate(day.Date) {
			return faults.Conflictf("date %s is blocked", day.Date.Format("2006-01-02"))
		}
	}
	for _, b := range existing {
		if !b.State.Active() {
			continue
		}
		if r.Overlaps(b.Range) {
			return faults.Conflictf("dates overlap an existing reservation")
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
