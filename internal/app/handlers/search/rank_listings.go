package search

import (
	"context"
	"errors"

	"staywise/internal/app/queries"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	domainmatching "staywise/internal/domain/matching"
	domaintraveler "staywise/internal/domain/traveler"
)

const rankListingsKey = "search.rank"

// RankListingsQuery orders listings by traveler/listing compatibility.
// Anonymous searches (empty UserID) fall back to popular-choice scoring,
// which preserves input order.
type RankListingsQuery struct {
	UserID string
}

func (q RankListingsQuery) Key() string { return rankListingsKey }

type RankedListing struct {
	ListingID    string   `json:"listing_id"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	PropertyType string   `json:"property_type"`
	NightlyPrice int64    `json:"nightly_price"`
	Currency     string   `json:"currency"`
	MatchScore   float64  `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
}

type RankListingsResult struct {
	Items []RankedListing `json:"items"`
}

type RankListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *RankListingsHandler) Handle(ctx context.Context, q RankListingsQuery) (*RankListingsResult, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var profile *domaintraveler.Profile
	if q.UserID != "" {
		profile, err = unit.Profiles().ByUser(execCtx, q.UserID)
		if err != nil && !errors.Is(err, domaintraveler.ErrProfileNotFound) {
			return nil, err
		}
	}

	listings, err := unit.Listings().All(execCtx)
	if err != nil {
		return nil, err
	}

	ranked := domainmatching.Rank(profile, listings)
	items := make([]RankedListing, 0, len(ranked))
	for _, r := range ranked {
		price := r.Listing.NightlyPrice()
		items = append(items, RankedListing{
			ListingID:    string(r.Listing.ID),
			Title:        r.Listing.Title,
			Location:     r.Listing.Location,
			PropertyType: r.Listing.PropertyType,
			NightlyPrice: price.MajorUnits(),
			Currency:     price.Currency,
			MatchScore:   r.Score,
			MatchReasons: r.Reasons,
		})
	}
	return &RankListingsResult{Items: items}, nil
}

var _ queries.Handler[RankListingsQuery, *RankListingsResult] = (*RankListingsHandler)(nil)
