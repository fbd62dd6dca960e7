package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/app/outbox"
	"staywise/internal/app/policies"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	domainbooking "staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
)

const confirmBookingKey = "reservation.confirm"

// ConfirmBookingCommand moves a pending booking to confirmed. Issued by the
// payment webhook on settlement, or by an operator override in deployments
// without a payment collaborator.
type ConfirmBookingCommand struct {
	BookingID string
	PaymentID string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type ConfirmBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type ConfirmBookingHandler struct {
	UoWFactory uow.UoWFactory
	Notifier   policies.Notifier
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*ConfirmBookingResult, error) {
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

	listing, err := unit.Listings().ByID(execCtx, bk.ListingID)
	if err != nil {
		return nil, err
	}

	now := nowOr(h.Now)
	if err := bk.Confirm(cmd.PaymentID, now); err != nil {
		return nil, faults.Wrap(faults.KindValidation, "cannot confirm booking", err)
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

	// Notify both parties, fire-and-forget. Delivery problems are logged,
	// never propagated.
	if h.Notifier != nil {
		payload := map[string]any{
			"booking_id": string(bk.ID),
			"listing_id": string(bk.ListingID),
			"check_in":   bk.Range.CheckIn,
			"check_out":  bk.Range.CheckOut,
		}
		if err := h.Notifier.Send(ctx, bk.GuestID, "booking_confirmed_guest", payload); err != nil && h.Logger != nil {
			h.Logger.Warn("guest notification failed", "booking_id", bk.ID, "error", err)
		}
		if err := h.Notifier.Send(ctx, string(listing.Host), "booking_confirmed_host", payload); err != nil && h.Logger != nil {
			h.Logger.Warn("host notification failed", "booking_id", bk.ID, "error", err)
		}
	}

	return &ConfirmBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
}

func nowOr(f func() time.Time) time.Time {
	if f != nil {
		return f().UTC()
	}
	return time.Now().UTC()
}

func encoderOr(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ConfirmBookingCommand, *ConfirmBookingResult] = (*ConfirmBookingHandler)(nil)
