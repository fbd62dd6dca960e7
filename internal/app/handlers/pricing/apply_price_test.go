package pricing

import (
	"context"
	"testing"
	"time"

	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
	"staywise/internal/domain/shared/money"
	"staywise/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type applyEnv struct {
	store   *memory.Store
	outbox  *memory.Outbox
	handler *ApplyPriceHandler
}

func newApplyEnv(t *testing.T) *applyEnv {
	t.Helper()
	store := memory.NewStore()
	ob := memory.NewOutbox()

	listing, err := domainlistings.New(domainlistings.CreateParams{
		ID:           "lst-1",
		Host:         "host-1",
		Title:        "Harbor View",
		Location:     "Lakeside",
		Price:        money.FromMajorUnits(100, "USD"),
		MaxGuests:    4,
		SmartPricing: true,
		Now:          day(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if err := store.Listings.Save(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}

	return &applyEnv{
		store:  store,
		outbox: ob,
		handler: &ApplyPriceHandler{
			UoWFactory: memory.NewUoWFactory(store),
			Outbox:     ob,
			Now:        func() time.Time { return day(2026, 7, 1) },
		},
	}
}

func TestApplyPriceUpdatesListingAndHistory(t *testing.T) {
	env := newApplyEnv(t)
	ctx := context.Background()

	res, err := env.handler.Handle(ctx, ApplyPriceCommand{
		ListingID: "lst-1",
		HostID:    "host-1",
		Price:     135,
		Reason:    "weekend demand",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.CurrentPrice != 135 || res.Currency != "USD" {
		t.Fatalf("result price=%d currency=%s", res.CurrentPrice, res.Currency)
	}

	listing, err := env.store.Listings.ByID(ctx, "lst-1")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if listing.CurrentPrice == nil || listing.CurrentPrice.MajorUnits() != 135 {
		t.Fatalf("current price=%v want=135", listing.CurrentPrice)
	}
	// No recent bookings puts demand at the floor.
	if listing.DemandScore != 30 {
		t.Fatalf("demand score=%d want=30", listing.DemandScore)
	}

	entry, err := env.store.PricingHistory.Latest(ctx, "lst-1")
	if err != nil {
		t.Fatalf("latest history: %v", err)
	}
	if entry == nil {
		t.Fatal("history entry missing")
	}
	if entry.Price.MajorUnits() != 135 || entry.Reason != "weekend demand" || entry.DemandScore != 30 {
		t.Fatalf("history entry=%+v", entry)
	}

	records := env.outbox.Records()
	if len(records) != 1 || records[0].Name != "pricing.applied" {
		t.Fatalf("outbox records=%v", records)
	}
}

func TestApplyPriceRejectsNonOwner(t *testing.T) {
	env := newApplyEnv(t)
	ctx := context.Background()

	_, err := env.handler.Handle(ctx, ApplyPriceCommand{
		ListingID: "lst-1",
		HostID:    "host-2",
		Price:     135,
	})
	if !faults.IsKind(err, faults.KindForbidden) {
		t.Fatalf("err=%v want forbidden fault", err)
	}

	listing, err := env.store.Listings.ByID(ctx, "lst-1")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if listing.CurrentPrice != nil {
		t.Fatalf("rejected apply mutated price: %v", listing.CurrentPrice)
	}
	entry, err := env.store.PricingHistory.Latest(ctx, "lst-1")
	if err != nil {
		t.Fatalf("latest history: %v", err)
	}
	if entry != nil {
		t.Fatalf("rejected apply wrote history: %+v", entry)
	}
}

func TestApplyPriceRejectsNonPositive(t *testing.T) {
	env := newApplyEnv(t)
	for _, price := range []int64{0, -10} {
		_, err := env.handler.Handle(context.Background(), ApplyPriceCommand{
			ListingID: "lst-1",
			HostID:    "host-1",
			Price:     price,
		})
		if !faults.IsKind(err, faults.KindValidation) {
			t.Fatalf("price=%d err=%v want validation fault", price, err)
		}
	}
}

func TestApplyPriceUnknownListing(t *testing.T) {
	env := newApplyEnv(t)
	_, err := env.handler.Handle(context.Background(), ApplyPriceCommand{
		ListingID: "lst-missing",
		HostID:    "host-1",
		Price:     135,
	})
	if !faults.IsKind(err, faults.KindNotFound) {
		t.Fatalf("err=%v want not-found fault", err)
	}
}
