package booking

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/app/middleware"
	"staywise/internal/app/policies"
	appuow "staywise/internal/app/uow"
	domainavailability "staywise/internal/domain/availability"
	domainbooking "staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
	domainlistings "staywise/internal/domain/listings"
	domainpricing "staywise/internal/domain/pricing"
	"staywise/internal/domain/shared/money"
	domaintraveler "staywise/internal/domain/traveler"
	"staywise/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type admitEnv struct {
	store   *memory.Store
	outbox  *memory.Outbox
	handler *AdmitReservationHandler
}

func newAdmitEnv(t *testing.T) *admitEnv {
	t.Helper()
	store := memory.NewStore()
	ob := memory.NewOutbox()

	listing, err := domainlistings.New(domainlistings.CreateParams{
		ID:        "lst-1",
		Host:      "host-1",
		Title:     "Harbor View",
		Location:  "Lakeside",
		Price:     money.Must(10000, "USD"),
		MaxGuests: 4,
		Now:       day(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if err := store.Listings.Save(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}

	return &admitEnv{
		store:  store,
		outbox: ob,
		handler: &AdmitReservationHandler{
			UoWFactory: memory.NewUoWFactory(store),
			Locker:     memory.NewListingLocker(),
			Outbox:     ob,
			Now:        func() time.Time { return day(2026, 7, 1) },
		},
	}
}

func admitCmd(id string, in, out time.Time) AdmitReservationCommand {
	return AdmitReservationCommand{
		CommandID: id,
		ListingID: "lst-1",
		GuestID:   "guest-1",
		CheckIn:   in,
		CheckOut:  out,
		Guests:    2,
	}
}

func TestAdmitCreatesPendingBooking(t *testing.T) {
	env := newAdmitEnv(t)
	res, err := env.handler.Handle(context.Background(), admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13)))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if res.Status != string(domainbooking.StatePending) {
		t.Fatalf("status=%s want=%s", res.Status, domainbooking.StatePending)
	}
	if res.Nights != 3 || res.Subtotal != 30000 || res.ServiceFee != 3000 || res.TotalPrice != 33000 {
		t.Fatalf("quote nights=%d subtotal=%d fee=%d total=%d", res.Nights, res.Subtotal, res.ServiceFee, res.TotalPrice)
	}

	stored, err := env.store.Bookings.ByID(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("stored booking: %v", err)
	}
	if stored.State != domainbooking.StatePending {
		t.Fatalf("stored state=%s want=%s", stored.State, domainbooking.StatePending)
	}

	records := env.outbox.Records()
	if len(records) != 1 || records[0].Name != "reservation.admitted" {
		t.Fatalf("outbox records=%v", records)
	}
}

func TestAdmitOverlapConflicts(t *testing.T) {
	env := newAdmitEnv(t)
	ctx := context.Background()
	if _, err := env.handler.Handle(ctx, admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	_, err := env.handler.Handle(ctx, admitCmd("bk-2", day(2026, 7, 12), day(2026, 7, 15)))
	if !faults.IsKind(err, faults.KindConflict) {
		t.Fatalf("err=%v want conflict fault", err)
	}
	all, err := env.store.Bookings.ByListing(ctx, "lst-1")
	if err != nil {
		t.Fatalf("by listing: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("bookings=%d want=1", len(all))
	}
}

func TestAdmitBackToBackStays(t *testing.T) {
	env := newAdmitEnv(t)
	ctx := context.Background()
	if _, err := env.handler.Handle(ctx, admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	// New stay starting on the previous checkout day shares no night.
	if _, err := env.handler.Handle(ctx, admitCmd("bk-2", day(2026, 7, 13), day(2026, 7, 16))); err != nil {
		t.Fatalf("back-to-back admit: %v", err)
	}
}

func TestAdmitUnknownListing(t *testing.T) {
	env := newAdmitEnv(t)
	cmd := admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13))
	cmd.ListingID = "lst-missing"
	_, err := env.handler.Handle(context.Background(), cmd)
	if !faults.IsKind(err, faults.KindNotFound) {
		t.Fatalf("err=%v want not-found fault", err)
	}
}

func TestAdmitConcurrentOverlapAdmitsExactlyOne(t *testing.T) {
	env := newAdmitEnv(t)
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := admitCmd(fmt.Sprintf("bk-%d", i), day(2026, 7, 10), day(2026, 7, 13))
			_, errs[i] = env.handler.Handle(context.Background(), cmd)
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case faults.IsKind(err, faults.KindConflict):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != attempts-1 {
		t.Fatalf("won=%d lost=%d want exactly one winner", won, lost)
	}

	all, err := env.store.Bookings.ByListing(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("by listing: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("bookings=%d want=1", len(all))
	}
}

// stagedFactory mimics a transactional store: writes staged inside a unit
// stay invisible to other units until Commit, and Commit takes a while.
type stagedFactory struct {
	store *memory.Store
	delay time.Duration
}

func (f *stagedFactory) Begin(ctx context.Context, opts appuow.TxOptions) (appuow.UnitOfWork, error) {
	return &stagedUnit{store: f.store, delay: f.delay}, nil
}

type stagedUnit struct {
	store  *memory.Store
	delay  time.Duration
	staged []*domainbooking.Booking
}

func (u *stagedUnit) Listings() domainlistings.Repository { return u.store.Listings }
func (u *stagedUnit) Bookings() domainbooking.Repository  { return &stagedBookings{unit: u} }
func (u *stagedUnit) BlockedDates() domainavailability.BlockedDateRepository {
	return u.store.BlockedDates
}
func (u *stagedUnit) PricingHistory() domainpricing.HistoryRepository { return u.store.PricingHistory }
func (u *stagedUnit) Profiles() domaintraveler.Repository            { return u.store.Profiles }

func (u *stagedUnit) Commit(ctx context.Context) error {
	time.Sleep(u.delay)
	for _, bk := range u.staged {
		if err := u.store.Bookings.Save(ctx, bk); err != nil {
			return err
		}
	}
	u.staged = nil
	return nil
}

func (u *stagedUnit) Rollback(ctx context.Context) error {
	u.staged = nil
	return nil
}

type stagedBookings struct {
	unit *stagedUnit
}

func (r *stagedBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return r.unit.store.Bookings.ByID(ctx, id)
}

func (r *stagedBookings) ByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.unit.store.Bookings.ByListing(ctx, listingID)
}

func (r *stagedBookings) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.unit.store.Bookings.ListByGuest(ctx, guestID)
}

func (r *stagedBookings) Save(ctx context.Context, bk *domainbooking.Booking) error {
	r.unit.staged = append(r.unit.staged, bk)
	return nil
}

func TestAdmitCommitsBeforeReleasingLock(t *testing.T) {
	// With commit-time visibility, the overlap check of a second admission
	// only sees the first booking if the first unit committed while the
	// listing lock was still held. Dispatching through the full chain
	// verifies the transaction middleware leaves admission to its own unit.
	env := newAdmitEnv(t)
	factory := &stagedFactory{store: env.store, delay: 50 * time.Millisecond}
	env.handler.UoWFactory = factory

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[AdmitReservationCommand, *AdmitReservationResult](base, admitReservationKey, env.handler)
	bus := middleware.ChainCommands(base,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
	)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := admitCmd(fmt.Sprintf("bk-%d", i), day(2026, 7, 10), day(2026, 7, 13))
			_, errs[i] = commands.Dispatch[AdmitReservationCommand, *AdmitReservationResult](context.Background(), bus, cmd)
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case faults.IsKind(err, faults.KindConflict):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("won=%d lost=%d want exactly one winner", won, lost)
	}

	all, err := env.store.Bookings.ByListing(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("by listing: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("committed bookings=%d want=1", len(all))
	}
}

func TestAdmitQuoteFrozenAfterPriceChange(t *testing.T) {
	env := newAdmitEnv(t)
	ctx := context.Background()

	res, err := env.handler.Handle(ctx, admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13)))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}

	listing, err := env.store.Listings.ByID(ctx, "lst-1")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if err := listing.ApplyPrice(money.FromMajorUnits(180, "USD"), 50, day(2026, 7, 11)); err != nil {
		t.Fatalf("apply price: %v", err)
	}
	if err := env.store.Listings.Save(ctx, listing); err != nil {
		t.Fatalf("save listing: %v", err)
	}

	bk, err := env.store.Bookings.ByID(ctx, domainbooking.BookingID(res.BookingID))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if bk.Price.Subtotal.Amount != 30000 || bk.Price.ServiceFee.Amount != 3000 || bk.Price.Total.Amount != 33000 {
		t.Fatalf("quote changed: subtotal=%d fee=%d total=%d", bk.Price.Subtotal.Amount, bk.Price.ServiceFee.Amount, bk.Price.Total.Amount)
	}
}

type failingPayments struct{}

func (failingPayments) InitiateCharge(ctx context.Context, req policies.ChargeRequest) (string, error) {
	return "", faults.Unavailable("payments service unreachable", nil)
}

func TestAdmitLogsChargeInitiationFailure(t *testing.T) {
	env := newAdmitEnv(t)
	var buf bytes.Buffer
	env.handler.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	env.handler.Payments = failingPayments{}

	res, err := env.handler.Handle(context.Background(), admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13)))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if res.Status != string(domainbooking.StatePending) {
		t.Fatalf("status=%s want=%s", res.Status, domainbooking.StatePending)
	}
	if !strings.Contains(buf.String(), "charge initiation failed") {
		t.Fatalf("charge failure not logged: %q", buf.String())
	}
}

func TestAdmitIdempotentReplay(t *testing.T) {
	env := newAdmitEnv(t)
	factory := memory.NewUoWFactory(env.store)

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[AdmitReservationCommand, *AdmitReservationResult](base, admitReservationKey, env.handler)
	bus := middleware.ChainCommands(base,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
	)
	ctx := context.Background()

	first := admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13))
	first.IdempotencyKeyV = "req-1"
	got, err := commands.Dispatch[AdmitReservationCommand, *AdmitReservationResult](ctx, bus, first)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	// Same key with a fresh command id must replay, not double-book.
	retry := admitCmd("bk-retry", day(2026, 7, 10), day(2026, 7, 13))
	retry.IdempotencyKeyV = "req-1"
	replayed, err := commands.Dispatch[AdmitReservationCommand, *AdmitReservationResult](ctx, bus, retry)
	if err != nil {
		t.Fatalf("replay dispatch: %v", err)
	}
	if replayed.BookingID != got.BookingID {
		t.Fatalf("replayed booking=%s want=%s", replayed.BookingID, got.BookingID)
	}

	all, err := env.store.Bookings.ByListing(ctx, "lst-1")
	if err != nil {
		t.Fatalf("by listing: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("bookings=%d want=1", len(all))
	}
}

func TestAdmitIdempotentReplayKeepsConflictKind(t *testing.T) {
	env := newAdmitEnv(t)
	factory := memory.NewUoWFactory(env.store)

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[AdmitReservationCommand, *AdmitReservationResult](base, admitReservationKey, env.handler)
	bus := middleware.ChainCommands(base,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
	)
	ctx := context.Background()

	winner := admitCmd("bk-1", day(2026, 7, 10), day(2026, 7, 13))
	winner.IdempotencyKeyV = "req-1"
	if _, err := commands.Dispatch[AdmitReservationCommand, *AdmitReservationResult](ctx, bus, winner); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	loser := admitCmd("bk-2", day(2026, 7, 12), day(2026, 7, 15))
	loser.IdempotencyKeyV = "req-2"
	if _, err := commands.Dispatch[AdmitReservationCommand, *AdmitReservationResult](ctx, bus, loser); !faults.IsKind(err, faults.KindConflict) {
		t.Fatalf("err=%v want conflict fault", err)
	}

	// Replaying the rejected command keeps the stored kind.
	if _, err := commands.Dispatch[AdmitReservationCommand, *AdmitReservationResult](ctx, bus, loser); !faults.IsKind(err, faults.KindConflict) {
		t.Fatalf("replayed err=%v want conflict fault", err)
	}
}
