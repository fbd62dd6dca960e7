package pricing

import (
	"context"
	"time"

	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/money"
)

// HistoryEntry is one row of the append-only pricing audit trail. Entries
// are never updated or deleted; the newest entry always matches the
// listing's CurrentPrice.
type HistoryEntry struct {
	ListingID   listings.ListingID
	Price       money.Money
	Reason      string
	DemandScore int
	CreatedAt   time.Time
}

type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	Latest(ctx context.Context, id listings.ListingID) (*HistoryEntry, error)
	ForListing(ctx context.Context, id listings.ListingID) ([]HistoryEntry, error)
}
