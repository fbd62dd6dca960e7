package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainavailability "staywise/internal/domain/availability"
	domainlistings "staywise/internal/domain/listings"
)

type BlockedDateRepository struct {
	col *mongo.Collection
}

func NewBlockedDateRepository(db *mongo.Database) *BlockedDateRepository {
	col := db.Collection("calendar_blocked")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "date", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BlockedDateRepository{col: col}
}

func (r *BlockedDateRepository) ForListing(ctx context.Context, id domainlistings.ListingID) ([]domainavailability.BlockedDate, error) {
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(id)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainavailability.BlockedDate
	for cursor.Next(ctx) {
		var doc blockedDateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}

func (r *BlockedDateRepository) Add(ctx context.Context, blocked domainavailability.BlockedDate) error {
	doc := blockedDateDocument{
		ID:        blockedDateID(blocked.ListingID, blocked.Date),
		ListingID: string(blocked.ListingID),
		Date:      blocked.Date.UnixMilli(),
		Reason:    blocked.Reason,
		CreatedAt: blocked.CreatedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		// Blocking an already blocked day is a no-op.
		return nil
	}
	return err
}

func (r *BlockedDateRepository) Remove(ctx context.Context, id domainlistings.ListingID, date time.Time) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": blockedDateID(id, date)})
	return err
}

type blockedDateDocument struct {
	ID        string `bson:"_id"`
	ListingID string `bson:"listing_id"`
	Date      int64  `bson:"date"`
	Reason    string `bson:"reason"`
	CreatedAt int64  `bson:"created_at"`
}

func (d blockedDateDocument) toDomain() domainavailability.BlockedDate {
	return domainavailability.BlockedDate{
		ListingID: domainlistings.ListingID(d.ListingID),
		Date:      timestampToTime(d.Date),
		Reason:    d.Reason,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

func blockedDateID(id domainlistings.ListingID, date time.Time) string {
	return fmt.Sprintf("%s:%s", id, date.UTC().Format("2006-01-02"))
}
