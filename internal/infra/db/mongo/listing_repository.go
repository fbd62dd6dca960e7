package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staywise/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) All(ctx context.Context) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainlistings.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type listingDocument struct {
	ID            string         `bson:"_id"`
	Host          string         `bson:"host_id"`
	Title         string         `bson:"title"`
	Location      string         `bson:"location"`
	PropertyType  string         `bson:"property_type"`
	Price         moneyDocument  `bson:"price"`
	BasePrice     moneyDocument  `bson:"base_price"`
	CurrentPrice  *moneyDocument `bson:"current_price,omitempty"`
	DemandScore   int            `bson:"demand_score"`
	MaxGuests     int            `bson:"max_guests"`
	Amenities     []string       `bson:"amenities"`
	Vibes         []string       `bson:"vibes"`
	WorkFriendly  bool           `bson:"work_friendly"`
	WorkAmenities []string       `bson:"work_amenities"`
	WifiSpeedMbps *int           `bson:"wifi_speed_mbps,omitempty"`
	IdealFor      []string       `bson:"ideal_for"`
	SmartPricing  bool           `bson:"smart_pricing"`
	Version       int64          `bson:"version"`
	CreatedAt     int64          `bson:"created_at"`
	UpdatedAt     int64          `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:            string(l.ID),
		Host:          string(l.Host),
		Title:         l.Title,
		Location:      l.Location,
		PropertyType:  l.PropertyType,
		Price:         newMoneyDocument(l.Price),
		BasePrice:     newMoneyDocument(l.BasePrice),
		DemandScore:   l.DemandScore,
		MaxGuests:     l.MaxGuests,
		Amenities:     l.Amenities,
		Vibes:         l.Vibes,
		WorkFriendly:  l.WorkFriendly,
		WorkAmenities: l.WorkAmenities,
		WifiSpeedMbps: l.WifiSpeedMbps,
		IdealFor:      l.IdealFor,
		SmartPricing:  l.SmartPricing,
		Version:       l.Version,
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
	}
	if l.CurrentPrice != nil {
		cur := newMoneyDocument(*l.CurrentPrice)
		doc.CurrentPrice = &cur
	}
	return doc
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	l := &domainlistings.Listing{
		ID:            domainlistings.ListingID(d.ID),
		Host:          domainlistings.HostID(d.Host),
		Title:         d.Title,
		Location:      d.Location,
		PropertyType:  d.PropertyType,
		Price:         d.Price.toMoney(),
		BasePrice:     d.BasePrice.toMoney(),
		DemandScore:   d.DemandScore,
		MaxGuests:     d.MaxGuests,
		Amenities:     d.Amenities,
		Vibes:         d.Vibes,
		WorkFriendly:  d.WorkFriendly,
		WorkAmenities: d.WorkAmenities,
		WifiSpeedMbps: d.WifiSpeedMbps,
		IdealFor:      d.IdealFor,
		SmartPricing:  d.SmartPricing,
		Version:       d.Version,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
	if d.CurrentPrice != nil {
		cur := d.CurrentPrice.toMoney()
		l.CurrentPrice = &cur
	}
	return l
}
