package ginserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staywise/internal/app/commands"
	BookingApp "staywise/internal/app/handlers/booking"
	SearchApp "staywise/internal/app/handlers/search"
	"staywise/internal/app/middleware"
	"staywise/internal/app/queries"
	domainlistings "staywise/internal/domain/listings"
	"staywise/internal/domain/shared/money"
	domaintraveler "staywise/internal/domain/traveler"
	"staywise/internal/infra/config"
	"staywise/internal/infra/obs"
	"staywise/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	factory := memory.NewUoWFactory(store)
	ob := memory.NewOutbox()
	now := func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[BookingApp.AdmitReservationCommand, *BookingApp.AdmitReservationResult](
		base, BookingApp.AdmitReservationCommand{}.Key(), &BookingApp.AdmitReservationHandler{
			UoWFactory: factory,
			Locker:     memory.NewListingLocker(),
			Outbox:     ob,
			Now:        now,
		})
	commands.RegisterHandler[BookingApp.ConfirmBookingCommand, *BookingApp.ConfirmBookingResult](
		base, BookingApp.ConfirmBookingCommand{}.Key(), &BookingApp.ConfirmBookingHandler{
			UoWFactory: factory,
			Outbox:     ob,
			Now:        now,
		})
	commands.RegisterHandler[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](
		base, BookingApp.CancelBookingCommand{}.Key(), &BookingApp.CancelBookingHandler{
			UoWFactory: factory,
			Outbox:     ob,
			Now:        now,
		})
	commandBus := middleware.ChainCommands(base,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
	)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[BookingApp.GuestBookingsQuery, *BookingApp.GuestBookingsResult](
		queryBus, BookingApp.GuestBookingsQuery{}.Key(), &BookingApp.GuestBookingsHandler{UoWFactory: factory})
	queries.RegisterHandler[SearchApp.RankListingsQuery, *SearchApp.RankListingsResult](
		queryBus, SearchApp.RankListingsQuery{}.Key(), &SearchApp.RankListingsHandler{UoWFactory: factory})

	listing, err := domainlistings.New(domainlistings.CreateParams{
		ID:        "lst-1",
		Host:      "host-1",
		Title:     "Harbor View",
		Location:  "Lakeside",
		Price:     money.FromMajorUnits(100, "USD"),
		MaxGuests: 4,
		IdealFor:  []string{"family"},
		Now:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if err := store.Listings.Save(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	if err := store.Profiles.Save(context.Background(), &domaintraveler.Profile{
		UserID:       "guest-1",
		TravelIntent: "family",
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	srv := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Reservation:    ReservationHandler{Commands: commandBus, Queries: queryBus},
		PaymentWebhook: PaymentWebhookHandler{Commands: commandBus},
		Search:         SearchHandler{Queries: queryBus},
	})
	return srv.Handler, store
}

func doJSON(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const reservationBody = `{"listing_id":"lst-1","check_in":"2026-07-10T00:00:00Z","check_out":"2026-07-13T00:00:00Z","guests":2}`

func TestCreateReservationEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "guest-1", reservationBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res BookingApp.AdmitReservationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Nights != 3 || res.TotalPrice != 33000 {
		t.Fatalf("nights=%d total=%d", res.Nights, res.TotalPrice)
	}
}

func TestCreateReservationRequiresCaller(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "", reservationBody)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want=401", rec.Code)
	}
}

func TestCreateReservationConflictMapsTo409(t *testing.T) {
	h, _ := newTestServer(t)
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "guest-1", reservationBody); rec.Code != http.StatusCreated {
		t.Fatalf("first status=%d", rec.Code)
	}
	overlap := `{"listing_id":"lst-1","check_in":"2026-07-12T00:00:00Z","check_out":"2026-07-15T00:00:00Z","guests":2}`
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "guest-2", overlap)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s want=409", rec.Code, rec.Body.String())
	}
}

func TestCreateReservationUnknownListingMapsTo404(t *testing.T) {
	h, _ := newTestServer(t)
	body := `{"listing_id":"lst-missing","check_in":"2026-07-10T00:00:00Z","check_out":"2026-07-13T00:00:00Z","guests":2}`
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "guest-1", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=404", rec.Code)
	}
}

func TestPaymentWebhookSettlesBooking(t *testing.T) {
	h, store := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "guest-1", reservationBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admit status=%d", rec.Code)
	}
	var res BookingApp.AdmitReservationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	hook := fmt.Sprintf(`{"booking_id":%q,"status":"settled","payment_id":"pay-1"}`, res.BookingID)
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/payments/webhook", "", hook); rec.Code != http.StatusNoContent {
		t.Fatalf("webhook status=%d body=%s", rec.Code, rec.Body.String())
	}

	got, err := store.Bookings.ByListing(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("by listing: %v", err)
	}
	if len(got) != 1 || string(got[0].State) != "CONFIRMED" {
		t.Fatalf("bookings=%v", got)
	}
}

func TestPaymentWebhookRejectsUnknownStatus(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/payments/webhook", "", `{"booking_id":"bk-1","status":"pending"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", rec.Code)
	}
}

func TestSearchRanksForProfile(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/search", "guest-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res SearchApp.RankListingsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ListingID != "lst-1" {
		t.Fatalf("items=%v", res.Items)
	}
	// Intent match plus the not-applicable work factor.
	if res.Items[0].MatchScore != 40 {
		t.Fatalf("score=%v want=40", res.Items[0].MatchScore)
	}
}

func TestSearchAnonymousFallsBack(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/search", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var res SearchApp.RankListingsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].MatchScore != 85 {
		t.Fatalf("items=%v", res.Items)
	}
}
