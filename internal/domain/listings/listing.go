package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staywise/internal/domain/shared/events"
	"staywise/internal/domain/shared/money"
)

var (
	ErrIDRequired       = errors.New("listings: id is required")
	ErrHostRequired     = errors.New("listings: host is required")
	ErrGuestsLimit      = errors.New("listings: max guests must be at least 1")
	ErrNegativePrice    = errors.New("listings: price must be non-negative")
	ErrDemandScoreRange = errors.New("listings: demand score must be between 0 and 100")
	ErrListingNotFound  = errors.New("listings: not found")
)

type ListingID string
type HostID string

type Listing struct {
	ID            ListingID
	Host          HostID
	Title         string
	Location      string
	PropertyType  string
	Price         money.Money
	BasePrice     money.Money
	CurrentPrice  *money.Money
	DemandScore   int
	MaxGuests     int
	Amenities     []string
	Vibes         []string
	WorkFriendly  bool
	WorkAmenities []string
	WifiSpeedMbps *int
	IdealFor      []string
	SmartPricing  bool
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	All(ctx context.Context) ([]*Listing, error)
}

type CreateParams struct {
	ID            ListingID
	Host          HostID
	Title         string
	Location      string
	PropertyType  string
	Price         money.Money
	BasePrice     money.Money
	MaxGuests     int
	Amenities     []string
	Vibes         []string
	WorkFriendly  bool
	WorkAmenities []string
	WifiSpeedMbps *int
	IdealFor      []string
	SmartPricing  bool
	Now           time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if params.Price.Amount < 0 || params.BasePrice.Amount < 0 {
		return nil, ErrNegativePrice
	}
	base := params.BasePrice
	if base.IsZero() {
		base = params.Price
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:            params.ID,
		Host:          params.Host,
		Title:         strings.TrimSpace(params.Title),
		Location:      strings.TrimSpace(params.Location),
		PropertyType:  strings.TrimSpace(params.PropertyType),
		Price:         params.Price,
		BasePrice:     base,
		MaxGuests:     params.MaxGuests,
		Amenities:     append([]string(nil), params.Amenities...),
		Vibes:         append([]string(nil), params.Vibes...),
		WorkFriendly:  params.WorkFriendly,
		WorkAmenities: append([]string(nil), params.WorkAmenities...),
		WifiSpeedMbps: params.WifiSpeedMbps,
		IdealFor:      append([]string(nil), params.IdealFor...),
		SmartPricing:  params.SmartPricing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return l, nil
}

// NightlyPrice is the rate a guest pays right now: the last applied dynamic
// price when one exists, the fixed list price otherwise.
func (l *Listing) NightlyPrice() money.Money {
	if l.CurrentPrice != nil {
		return *l.CurrentPrice
	}
	return l.Price
}

// ApplyPrice is the only mutation path for CurrentPrice and DemandScore.
// The paired pricing history append is the caller's responsibility inside
// the same unit of work.
func (l *Listing) ApplyPrice(price money.Money, demandScore int, now time.Time) error {
	if price.Amount < 0 {
		return ErrNegativePrice
	}
	if demandScore < 0 || demandScore > 100 {
		return ErrDemandScoreRange
	}
	applied := price
	l.CurrentPrice = &applied
	l.DemandScore = demandScore
	l.UpdatedAt = now.UTC()
	l.Record(PriceApplied{ListingID: l.ID, Price: price, DemandScore: demandScore, At: l.UpdatedAt})
	return nil
}
