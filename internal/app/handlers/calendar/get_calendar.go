package calendar

import (
	"context"
	"errors"
	"time"

	"staywise/internal/app/queries"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
)

const getCalendarKey = "calendar.get"

type GetCalendarQuery struct {
	ListingID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type CalendarEntry struct {
	Date   time.Time `json:"date"`
	Kind   string    `json:"kind"` // "booked" or "blocked"
	Reason string    `json:"reason,omitempty"`
}

type GetCalendarResult struct {
	ListingID string          `json:"listing_id"`
	Entries   []CalendarEntry `json:"entries"`
}

// GetCalendarHandler returns the days a listing cannot be booked: blocked
// days plus the nights held by pending/confirmed reservations.
type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*GetCalendarResult, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrListingNotFound) {
			return nil, faults.NotFoundf("listing %s not found", q.ListingID)
		}
		return nil, err
	}

	blocked, err := unit.BlockedDates().ForListing(execCtx, listing.ID)
	if err != nil {
		return nil, err
	}
	bookings, err := unit.Bookings().ByListing(execCtx, listing.ID)
	if err != nil {
		return nil, err
	}

	var entries []CalendarEntry
	for _, b := range blocked {
		entries = append(entries, CalendarEntry{Date: b.Date, Kind: "blocked", Reason: b.Reason})
	}
	for _, bk := range bookings {
		if !bk.State.Active() {
			continue
		}
		for _, day := range bk.Range.Days() {
			entries = append(entries, CalendarEntry{Date: day, Kind: "booked"})
		}
	}

	return &GetCalendarResult{ListingID: string(listing.ID), Entries: entries}, nil
}

var _ queries.Handler[GetCalendarQuery, *GetCalendarResult] = (*GetCalendarHandler)(nil)
