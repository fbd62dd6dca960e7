package traveler

import (
	"context"
	"errors"
)

var ErrProfileNotFound = errors.New("traveler: profile not found")

// Profile captures a guest's travel preferences. It is a read-only input to
// the matching engine; guests own and edit it elsewhere.
type Profile struct {
	UserID            string
	TravelIntent      string
	PreferredVibes    []string
	WorkNeeds         []string
	MustHaveAmenities []string
	BudgetRange       string
	PreferredTypes    []string
}

type Repository interface {
	ByUser(ctx context.Context, userID string) (*Profile, error)
}
