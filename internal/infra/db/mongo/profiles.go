package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domaintraveler "staywise/internal/domain/traveler"
)

type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection("traveler_profiles")}
}

func (r *ProfileRepository) ByUser(ctx context.Context, userID string) (*domaintraveler.Profile, error) {
	var doc profileDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintraveler.ErrProfileNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

type profileDocument struct {
	UserID            string   `bson:"_id"`
	TravelIntent      string   `bson:"travel_intent"`
	PreferredVibes    []string `bson:"preferred_vibes"`
	WorkNeeds         []string `bson:"work_needs"`
	MustHaveAmenities []string `bson:"must_have_amenities"`
	BudgetRange       string   `bson:"budget_range"`
	PreferredTypes    []string `bson:"preferred_types"`
}

func (d profileDocument) toDomain() *domaintraveler.Profile {
	return &domaintraveler.Profile{
		UserID:            d.UserID,
		TravelIntent:      d.TravelIntent,
		PreferredVibes:    d.PreferredVibes,
		WorkNeeds:         d.WorkNeeds,
		MustHaveAmenities: d.MustHaveAmenities,
		BudgetRange:       d.BudgetRange,
		PreferredTypes:    d.PreferredTypes,
	}
}
