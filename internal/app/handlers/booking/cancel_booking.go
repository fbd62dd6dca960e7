package booking

import (
	"context"
	"errors"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/app/outbox"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	domainbooking "staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
)

const cancelBookingKey = "reservation.cancel"

type CancelBookingCommand struct {
	BookingID   string
	RequestedBy string
	Reason      string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CancelBookingHandler cancels a pending or confirmed booking. Cancellation
// only removes a constraint from the availability view, so it needs no
// coordination with other bookings and no listing lock.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	bk, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			return nil, faults.NotFoundf("booking %s not found", cmd.BookingID)
		}
		return nil, err
	}
	if cmd.RequestedBy != "" && bk.GuestID != cmd.RequestedBy {
		listing, err := unit.Listings().ByID(execCtx, bk.ListingID)
		if err != nil || string(listing.Host) != cmd.RequestedBy {
			return nil, faults.Forbiddenf("only the guest or host can cancel")
		}
	}

	if err := bk.Cancel(cmd.Reason, nowOr(h.Now)); err != nil {
		return nil, faults.Wrap(faults.KindValidation, "cannot cancel booking", err)
	}
	if err := unit.Bookings().Save(execCtx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, encoderOr(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CancelBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
