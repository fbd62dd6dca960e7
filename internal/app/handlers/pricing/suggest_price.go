package pricing

import (
	"context"
	"errors"
	"time"

	"staywise/internal/app/queries"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
)

const suggestPriceKey = "pricing.suggest"

// SuggestPriceQuery asks for a dynamic price suggestion. Pure query: reads
// the listing and its bookings, runs the pricing arithmetic, mutates nothing.
type SuggestPriceQuery struct {
	ListingID string
	At        time.Time
}

func (q SuggestPriceQuery) Key() string { return suggestPriceKey }

type SuggestPriceResult struct {
	ListingID        string                          `json:"listingId"`
	SuggestedPrice   int64                           `json:"suggestedPrice"`
	CurrentPrice     int64                           `json:"currentPrice"`
	BasePrice        int64                           `json:"basePrice"`
	Currency         string                          `json:"currency"`
	Factors          domainpricing.Factors           `json:"factors"`
	Explanation      []string                        `json:"explanation"`
	PotentialRevenue domainpricing.RevenueProjection `json:"potentialRevenue"`
}

// SuggestPriceHandler is the single store-touching wrapper around the pure
// pricing functions; the ranking path and any batch path both come through
// here rather than re-implementing the lookup-then-compute dance.
type SuggestPriceHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *SuggestPriceHandler) Handle(ctx context.Context, q SuggestPriceQuery) (*SuggestPriceResult, error) {
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

	bookings, err := unit.Bookings().ByListing(execCtx, listing.ID)
	if err != nil {
		return nil, err
	}

	at := q.At
	if at.IsZero() {
		if h.Now != nil {
			at = h.Now()
		} else {
			at = time.Now()
		}
	}

	factors := domainpricing.ComputeFactors(listing, bookings, at)
	suggestion := domainpricing.Suggest(listing, factors)

	return &SuggestPriceResult{
		ListingID:        string(listing.ID),
		SuggestedPrice:   suggestion.SuggestedPrice.MajorUnits(),
		CurrentPrice:     suggestion.CurrentPrice.MajorUnits(),
		BasePrice:        suggestion.BasePrice.MajorUnits(),
		Currency:         suggestion.SuggestedPrice.Currency,
		Factors:          suggestion.Factors,
		Explanation:      suggestion.Explanations,
		PotentialRevenue: suggestion.Projection,
	}, nil
}

var _ queries.Handler[SuggestPriceQuery, *SuggestPriceResult] = (*SuggestPriceHandler)(nil)
