package booking

import (
	"context"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/app/outbox"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	domainbooking "staywise/internal/domain/booking"
	domainlistings "staywise/internal/domain/listings"
)

const completeStaysKey = "reservation.complete_stays"

// CompleteStaysCommand marks confirmed bookings whose checkout has passed as
// completed. Driven by the sweeper or an external reconciliation job.
type CompleteStaysCommand struct {
	ListingID string
}

func (c CompleteStaysCommand) Key() string { return completeStaysKey }

type CompleteStaysResult struct {
	Completed int `json:"completed"`
}

type CompleteStaysHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CompleteStaysHandler) Handle(ctx context.Context, cmd CompleteStaysCommand) (*CompleteStaysResult, error) {
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

	bookings, err := unit.Bookings().ByListing(execCtx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	now := nowOr(h.Now)
	count := 0
	for _, bk := range bookings {
		if bk.State != domainbooking.StateConfirmed || now.Before(bk.Range.CheckOut) {
			continue
		}
		if err := bk.Complete(now); err != nil {
			continue
		}
		if err := unit.Bookings().Save(execCtx, bk); err != nil {
			return nil, err
		}
		pending := bk.PendingEvents()
		bk.ClearEvents()
		if err := outbox.RecordDomainEvents(execCtx, h.Outbox, encoderOr(h.Encoder), pending); err != nil {
			return nil, err
		}
		count++
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CompleteStaysResult{Completed: count}, nil
}

var _ commands.Handler[CompleteStaysCommand, *CompleteStaysResult] = (*CompleteStaysHandler)(nil)
