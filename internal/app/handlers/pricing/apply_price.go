package pricing

import (
	"context"
	"errors"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/app/outbox"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
	"staywise/internal/domain/shared/money"
)

const applyPriceKey = "pricing.apply"

// ApplyPriceCommand sets a listing's current dynamic price. Host-only; the
// listing update and the pricing history append commit atomically.
type ApplyPriceCommand struct {
	ListingID string
	HostID    string
	Price     int64 // major currency units
	Reason    string
}

func (c ApplyPriceCommand) Key() string { return applyPriceKey }

type ApplyPriceResult struct {
	ListingID    string `json:"listingId"`
	CurrentPrice int64  `json:"currentPrice"`
	Currency     string `json:"currency"`
}

type ApplyPriceHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ApplyPriceHandler) Handle(ctx context.Context, cmd ApplyPriceCommand) (*ApplyPriceResult, error) {
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

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrListingNotFound) {
			return nil, faults.NotFoundf("listing %s not found", cmd.ListingID)
		}
		return nil, err
	}
	// Ownership check before any mutation; a rejected apply leaves no trace.
	if string(listing.Host) != cmd.HostID {
		return nil, faults.Forbiddenf("only the listing host can apply prices")
	}
	if cmd.Price <= 0 {
		return nil, faults.Validationf("price must be positive")
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}

	bookings, err := unit.Bookings().ByListing(execCtx, listing.ID)
	if err != nil {
		return nil, err
	}
	demandScore := domainpricing.DemandScoreFor(domainpricing.RecentBookingCount(bookings, now))

	price := money.FromMajorUnits(cmd.Price, listing.Price.Currency)
	if err := listing.ApplyPrice(price, demandScore, now); err != nil {
		return nil, faults.Wrap(faults.KindValidation, "cannot apply price", err)
	}
	if err := unit.Listings().Save(execCtx, listing); err != nil {
		return nil, err
	}
	if err := unit.PricingHistory().Append(execCtx, domainpricing.HistoryEntry{
		ListingID:   listing.ID,
		Price:       price,
		Reason:      cmd.Reason,
		DemandScore: demandScore,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, encoderOr(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &ApplyPriceResult{
		ListingID:    string(listing.ID),
		CurrentPrice: price.MajorUnits(),
		Currency:     price.Currency,
	}, nil
}

func encoderOr(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ApplyPriceCommand, *ApplyPriceResult] = (*ApplyPriceHandler)(nil)
