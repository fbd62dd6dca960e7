package policies

import (
	"context"

	"staywise/internal/domain/listings"
)

// ListingLocker serializes reservation admissions per listing so concurrent
// requests for the same calendar queue instead of racing the check-then-insert.
type ListingLocker interface {
	Acquire(ctx context.Context, id listings.ListingID) (release func(), err error)
}
