package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
	"staywise/internal/domain/listings"
	domainrange "staywise/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Unique index hit on commit looks the same to callers as a
			// pre-check conflict.
			return faults.Conflictf("reservation already exists for these dates")
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeBookings(ctx, cursor)
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeBookings(ctx, cursor)
}

func decodeBookings(ctx context.Context, cursor *mongo.Cursor) ([]*domainbooking.Booking, error) {
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type quoteDocument struct {
	Nights     int           `bson:"nights"`
	Nightly    moneyDocument `bson:"nightly"`
	Subtotal   moneyDocument `bson:"subtotal"`
	ServiceFee moneyDocument `bson:"service_fee"`
	Total      moneyDocument `bson:"total"`
}

type bookingDocument struct {
	ID        string        `bson:"_id"`
	ListingID string        `bson:"listing_id"`
	GuestID   string        `bson:"guest_id"`
	Range     rangeDocument `bson:"range"`
	Guests    int           `bson:"guests"`
	Price     quoteDocument `bson:"price"`
	State     string        `bson:"state"`
	PaymentID string        `bson:"payment_id"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
	Version   int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:    b.Guests,
		Price: quoteDocument{
			Nights:     b.Price.Nights,
			Nightly:    newMoneyDocument(b.Price.Nightly),
			Subtotal:   newMoneyDocument(b.Price.Subtotal),
			ServiceFee: newMoneyDocument(b.Price.ServiceFee),
			Total:      newMoneyDocument(b.Price.Total),
		},
		State:     string(b.State),
		PaymentID: b.PaymentID,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		GuestID:   d.GuestID,
		Range:     dr,
		Guests:    d.Guests,
		Price: domainbooking.Quote{
			Nights:     d.Price.Nights,
			Nightly:    d.Price.Nightly.toMoney(),
			Subtotal:   d.Price.Subtotal.toMoney(),
			ServiceFee: d.Price.ServiceFee.toMoney(),
			Total:      d.Price.Total.toMoney(),
		},
		State:     domainbooking.BookingState(d.State),
		PaymentID: d.PaymentID,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}
