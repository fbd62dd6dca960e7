package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
)

// PricingHistoryRepository persists the append-only price audit trail.
type PricingHistoryRepository struct {
	col *mongo.Collection
}

func NewPricingHistoryRepository(db *mongo.Database) *PricingHistoryRepository {
	col := db.Collection("pricing_history")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &PricingHistoryRepository{col: col}
}

func (r *PricingHistoryRepository) Append(ctx context.Context, entry domainpricing.HistoryEntry) error {
	doc := historyDocument{
		ListingID:   string(entry.ListingID),
		Price:       newMoneyDocument(entry.Price),
		Reason:      entry.Reason,
		DemandScore: entry.DemandScore,
		CreatedAt:   entry.CreatedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *PricingHistoryRepository) Latest(ctx context.Context, id domainlistings.ListingID) (*domainpricing.HistoryEntry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc historyDocument
	err := r.col.FindOne(ctx, bson.M{"listing_id": string(id)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	entry := doc.toDomain()
	return &entry, nil
}

func (r *PricingHistoryRepository) ForListing(ctx context.Context, id domainlistings.ListingID) ([]domainpricing.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(id)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainpricing.HistoryEntry
	for cursor.Next(ctx) {
		var doc historyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}

type historyDocument struct {
	ListingID   string        `bson:"listing_id"`
	Price       moneyDocument `bson:"price"`
	Reason      string        `bson:"reason"`
	DemandScore int           `bson:"demand_score"`
	CreatedAt   int64         `bson:"created_at"`
}

func (d historyDocument) toDomain() domainpricing.HistoryEntry {
	return domainpricing.HistoryEntry{
		ListingID:   domainlistings.ListingID(d.ListingID),
		Price:       d.Price.toMoney(),
		Reason:      d.Reason,
		DemandScore: d.DemandScore,
		CreatedAt:   timestampToTime(d.CreatedAt),
	}
}
