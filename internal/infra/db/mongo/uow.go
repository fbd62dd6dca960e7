package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staywise/internal/app/uow"
	domainavailability "staywise/internal/domain/availability"
	domainbooking "staywise/internal/domain/booking"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
	domaintraveler "staywise/internal/domain/traveler"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingsRepo       domainlistings.Repository
	BookingRepo        domainbooking.Repository
	BlockedDatesRepo   domainavailability.BlockedDateRepository
	PricingHistoryRepo domainpricing.HistoryRepository
	ProfilesRepo       domaintraveler.Repository
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:             f.DB,
		session:        session,
		listings:       f.ListingsRepo,
		booking:        f.BookingRepo,
		blockedDates:   f.BlockedDatesRepo,
		pricingHistory: f.PricingHistoryRepo,
		profiles:       f.ProfilesRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	listings       domainlistings.Repository
	booking        domainbooking.Repository
	blockedDates   domainavailability.BlockedDateRepository
	pricingHistory domainpricing.HistoryRepository
	profiles       domaintraveler.Repository
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.booking
}

func (u *Unit) BlockedDates() domainavailability.BlockedDateRepository {
	return u.blockedDates
}

func (u *Unit) PricingHistory() domainpricing.HistoryRepository {
	return u.pricingHistory
}

func (u *Unit) Profiles() domaintraveler.Repository {
	return u.profiles
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
