package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
)

// AdmissionLocker takes an advisory lock per listing so concurrent admission
// requests run their overlap check and insert one at a time, across processes.
// Locks expire via a TTL index so a crashed holder cannot wedge a listing.
type AdmissionLocker struct {
	col *mongo.Collection
	ttl time.Duration
}

type lockDocument struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

const lockRetryDelay = 50 * time.Millisecond

func NewAdmissionLocker(db *mongo.Database, ttl time.Duration) *AdmissionLocker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	col := db.Collection("admission_locks")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &AdmissionLocker{col: col, ttl: ttl}
}

// Acquire blocks until the lock for the listing is taken or ctx ends. The
// returned release removes the lock document and is safe to call twice.
func (l *AdmissionLocker) Acquire(ctx context.Context, id domainlistings.ListingID) (func(), error) {
	for {
		now := time.Now().UTC()
		doc := lockDocument{ID: string(id), ExpiresAt: now.Add(l.ttl), CreatedAt: now}
		_, err := l.col.InsertOne(ctx, doc)
		if err == nil {
			released := false
			release := func() {
				if released {
					return
				}
				released = true
				cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, _ = l.col.DeleteOne(cleanupCtx, bson.M{"_id": string(id)})
			}
			return release, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		// Mongo's TTL monitor only runs periodically, so reap stale locks
		// ourselves before retrying.
		if _, delErr := l.col.DeleteOne(ctx, bson.M{"_id": string(id), "expires_at": bson.M{"$lte": now}}); delErr != nil {
			return nil, delErr
		}
		select {
		case <-ctx.Done():
			return nil, faults.Conflictf("listing is busy, try again")
		case <-time.After(lockRetryDelay):
		}
	}
}
