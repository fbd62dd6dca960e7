package booking

import (
	"context"
	"errors"
	"time"

	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/daterange"
	"staywise/internal/domain/shared/events"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrStayNotOver     = errors.New("booking: stay has not ended yet")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
	StateCompleted BookingState = "COMPLETED"
)

// Active reports whether the state still holds the date range against new
// admissions. Cancelled and completed stays never block the calendar.
func (s BookingState) Active() bool {
	return s == StatePending || s == StateConfirmed
}

type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Price     Quote
	State     BookingState
	PaymentID string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Price     Quote
	CreatedAt time.Time
}

// New creates a pending booking with its price frozen. The quote is never
// recomputed, so later listing price edits cannot touch an admitted stay.
func New(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		Range:     params.Range,
		Guests:    params.Guests,
		Price:     params.Price,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(ReservationAdmitted{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, GuestsCount: b.Guests, Total: b.Price.Total, At: now})
	return b, nil
}

// Confirm moves a pending booking to confirmed, normally on a payment-settled
// signal. paymentID may be empty for operator overrides.
func (b *Booking) Confirm(paymentID string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.PaymentID = paymentID
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(ReservationConfirmed{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// Cancel is legal from pending or confirmed. The row stays around for audit;
// the interval is freed because cancelled states are not Active.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.State != StatePending && b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(ReservationCancelled{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Complete marks a confirmed stay whose checkout has passed.
func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	if now.UTC().Before(b.Range.CheckOut) {
		return ErrStayNotOver
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(StayCompleted{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}
