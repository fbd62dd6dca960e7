package calendar

import (
	"context"
	"errors"
	"time"

	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	domainavailability "staywise/internal/domain/availability"
	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
)

const (
	blockDatesKey  = "calendar.block"
	unblockDateKey = "calendar.unblock"
)

// BlockDatesCommand takes calendar days off the market for a listing.
type BlockDatesCommand struct {
	ListingID string
	HostID    string
	Dates     []time.Time
	Reason    string
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

type BlockDatesResult struct {
	Blocked int `json:"blocked"`
}

type BlockDatesHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (*BlockDatesResult, error) {
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

	listing, err := ownedListing(execCtx, unit, cmd.ListingID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	if len(cmd.Dates) == 0 {
		return nil, faults.Validationf("at least one date is required")
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	for _, d := range cmd.Dates {
		if err := unit.BlockedDates().Add(execCtx, domainavailability.BlockedDate{
			ListingID: listing.ID,
			Date:      dateOnly(d),
			Reason:    cmd.Reason,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &BlockDatesResult{Blocked: len(cmd.Dates)}, nil
}

// UnblockDateCommand reopens a previously blocked day.
type UnblockDateCommand struct {
	ListingID string
	HostID    string
	Date      time.Time
}

func (c UnblockDateCommand) Key() string { return unblockDateKey }

type UnblockDateResult struct {
	Unblocked bool `json:"unblocked"`
}

type UnblockDateHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *UnblockDateHandler) Handle(ctx context.Context, cmd UnblockDateCommand) (*UnblockDateResult, error) {
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

	listing, err := ownedListing(execCtx, unit, cmd.ListingID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	if err := unit.BlockedDates().Remove(execCtx, listing.ID, dateOnly(cmd.Date)); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &UnblockDateResult{Unblocked: true}, nil
}

func ownedListing(ctx context.Context, unit uow.UnitOfWork, listingID, hostID string) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrListingNotFound) {
			return nil, faults.NotFoundf("listing %s not found", listingID)
		}
		return nil, err
	}
	if string(listing.Host) != hostID {
		return nil, faults.Forbiddenf("only the listing host can manage the calendar")
	}
	return listing, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
