package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/app/middleware"
	"staywise/internal/app/outbox"
	"staywise/internal/app/policies"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	domainavailability "staywise/internal/domain/availability"
	domainbooking "staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
	domainrange "staywise/internal/domain/shared/daterange"
)

const admitReservationKey = "reservation.admit"

type AdmitReservationCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c AdmitReservationCommand) Key() string { return admitReservationKey }

func (c AdmitReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c AdmitReservationCommand) ResultPrototype() any { return &AdmitReservationResult{} }

// OwnsTransaction opts the command out of the bus transaction middleware.
// The handler commits its own unit of work before releasing the listing
// lock; an outer transaction would commit after the lock is gone and let a
// concurrent admission check availability against a stale snapshot.
func (c AdmitReservationCommand) OwnsTransaction() bool { return true }

type AdmitReservationResult struct {
	BookingID  string    `json:"booking_id"`
	Status     string    `json:"status"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Nights     int       `json:"nights"`
	Subtotal   int64     `json:"subtotal"`
	ServiceFee int64     `json:"service_fee"`
	TotalPrice int64     `json:"total_price"`
	Currency   string    `json:"currency"`
}

// AdmitReservationHandler runs the admission pipeline: serialize on the
// listing, validate, check the calendar, freeze the price, insert pending.
// The listing lock is what makes check-then-insert safe against concurrent
// admissions for the same listing, which requires the insert to be committed
// before the lock releases.
type AdmitReservationHandler struct {
	UoWFactory uow.UoWFactory
	Locker     policies.ListingLocker
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

var ErrLockerRequired = errors.New("booking: listing locker required")

func (h *AdmitReservationHandler) Handle(ctx context.Context, cmd AdmitReservationCommand) (*AdmitReservationResult, error) {
	if h.Locker == nil {
		return nil, ErrLockerRequired
	}
	release, err := h.Locker.Acquire(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	defer release()

	unit, execCtx, cleanup, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	managed := cleanup != nil
	committed := false
	if managed {
		defer func() {
			if !committed {
				cleanup()
			}
		}()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, faults.Validationf("check-out must be after check-in")
	}
	now := h.now()

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrListingNotFound) {
			return nil, faults.NotFoundf("listing %s not found", cmd.ListingID)
		}
		return nil, err
	}

	req := domainavailability.Request{GuestID: cmd.GuestID, Range: dr, Guests: cmd.Guests}
	if err := domainavailability.ValidateRequest(listing, req, now); err != nil {
		return nil, err
	}

	blocked, err := unit.BlockedDates().ForListing(execCtx, listing.ID)
	if err != nil {
		return nil, err
	}
	existing, err := unit.Bookings().ByListing(execCtx, listing.ID)
	if err != nil {
		return nil, err
	}
	if err := domainavailability.CheckRange(dr, existing, blocked); err != nil {
		return nil, err
	}

	// Freeze the price from the fixed list price. Later listing edits or
	// dynamic pricing applies never touch this booking.
	quote, err := domainbooking.NewQuote(listing.Price, dr)
	if err != nil {
		return nil, faults.Validationf("stay must cover at least one night")
	}

	bk, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		ListingID: listing.ID,
		GuestID:   cmd.GuestID,
		Range:     dr,
		Guests:    cmd.Guests,
		Price:     quote,
		CreatedAt: now,
	})
	if err != nil {
		return nil, faults.Wrap(faults.KindValidation, "invalid reservation", err)
	}

	// Store-level overlap constraints report through the same conflict kind
	// as the pre-check, so caller retry logic stays uniform.
	if err := unit.Bookings().Save(execCtx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
		committed = true
	}

	// Payment collection starts after the pending row is durable; the
	// collaborator reports back through the webhook. A failed initiation
	// is logged, never propagated: the pending booking stays admitted.
	if h.Payments != nil {
		_, err := h.Payments.InitiateCharge(ctx, policies.ChargeRequest{
			BookingID:   string(bk.ID),
			Amount:      bk.Price.Total,
			Destination: string(listing.Host),
			Metadata:    map[string]string{"listing_id": string(listing.ID)},
		})
		if err != nil && h.Logger != nil {
			h.Logger.Warn("charge initiation failed", "booking_id", bk.ID, "error", err)
		}
	}

	return &AdmitReservationResult{
		BookingID:  string(bk.ID),
		Status:     string(bk.State),
		CheckIn:    bk.Range.CheckIn,
		CheckOut:   bk.Range.CheckOut,
		Nights:     bk.Price.Nights,
		Subtotal:   bk.Price.Subtotal.Amount,
		ServiceFee: bk.Price.ServiceFee.Amount,
		TotalPrice: bk.Price.Total.Amount,
		Currency:   bk.Price.Total.Currency,
	}, nil
}

func (h *AdmitReservationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *AdmitReservationHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[AdmitReservationCommand, *AdmitReservationResult] = (*AdmitReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*AdmitReservationCommand)(nil)
var _ middleware.SelfTransactional = (*AdmitReservationCommand)(nil)
