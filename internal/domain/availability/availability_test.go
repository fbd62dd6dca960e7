package availability

import (
	"testing"
	"time"

	"staywise/internal/domain/booking"
	"staywise/internal/domain/faults"
	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/daterange"
	"staywise/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testListing(t *testing.T) *listings.Listing {
	t.Helper()
	l, err := listings.New(listings.CreateParams{
		ID:        "lst-1",
		Host:      "host-1",
		Title:     "Test Cottage",
		Location:  "Lakeside",
		Price:     money.Must(10000, "USD"),
		MaxGuests: 4,
		Now:       day(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	return l
}

func mustRange(t *testing.T, in, out time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(in, out)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

func activeBooking(t *testing.T, id string, in, out time.Time) *booking.Booking {
	t.Helper()
	dr := mustRange(t, in, out)
	quote, err := booking.NewQuote(money.Must(10000, "USD"), dr)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	bk, err := booking.New(booking.CreateParams{
		ID:        booking.BookingID(id),
		ListingID: "lst-1",
		GuestID:   "other-guest",
		Range:     dr,
		Guests:    2,
		Price:     quote,
		CreatedAt: day(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	return bk
}

func TestValidateRequestRejectsBadRange(t *testing.T) {
	l := testListing(t)
	req := Request{GuestID: "guest-1", Range: daterange.DateRange{CheckIn: day(2026, 7, 10), CheckOut: day(2026, 7, 10)}, Guests: 2}
	err := ValidateRequest(l, req, day(2026, 7, 1))
	if !faults.IsKind(err, faults.KindValidation) {
		t.Fatalf("err=%v want validation fault", err)
	}
}

func TestValidateRequestRejectsPastCheckIn(t *testing.T) {
	l := testListing(t)
	req := Request{GuestID: "guest-1", Range: mustRange(t, day(2026, 6, 1), day(2026, 6, 5)), Guests: 2}
	err := ValidateRequest(l, req, day(2026, 7, 1))
	if !faults.IsKind(err, faults.KindValidation) {
		t.Fatalf("err=%v want validation fault", err)
	}
}

func TestValidateRequestSameDayCheckInAllowed(t *testing.T) {
	l := testListing(t)
	req := Request{GuestID: "guest-1", Range: mustRange(t, day(2026, 7, 1), day(2026, 7, 3)), Guests: 2}
	// now is later in the day; check-in on today is still fine.
	now := time.Date(2026, 7, 1, 15, 30, 0, 0, time.UTC)
	if err := ValidateRequest(l, req, now); err != nil {
		t.Fatalf("same-day check-in rejected: %v", err)
	}
}

func TestValidateRequestGuestBounds(t *testing.T) {
	l := testListing(t)
	for _, guests := range []int{0, 5} {
		req := Request{GuestID: "guest-1", Range: mustRange(t, day(2026, 7, 10), day(2026, 7, 12)), Guests: guests}
		if err := ValidateRequest(l, req, day(2026, 7, 1)); !faults.IsKind(err, faults.KindValidation) {
			t.Fatalf("guests=%d err=%v want validation fault", guests, err)
		}
	}
}

func TestValidateRequestRejectsSelfBooking(t *testing.T) {
	l := testListing(t)
	req := Request{GuestID: "host-1", Range: mustRange(t, day(2026, 7, 10), day(2026, 7, 12)), Guests: 2}
	if err := ValidateRequest(l, req, day(2026, 7, 1)); !faults.IsKind(err, faults.KindValidation) {
		t.Fatalf("err=%v want validation fault", err)
	}
}

func TestCheckRangeBlockedDayConflicts(t *testing.T) {
	r := mustRange(t, day(2026, 7, 10), day(2026, 7, 13))
	blocked := []BlockedDate{{ListingID: "lst-1", Date: day(2026, 7, 11)}}
	err := CheckRange(r, nil, blocked)
	if !faults.IsKind(err, faults.KindConflict) {
		t.Fatalf("err=%v want conflict fault", err)
	}
}

func TestCheckRangeBlockedCheckoutDayAdmits(t *testing.T) {
	r := mustRange(t, day(2026, 7, 10), day(2026, 7, 13))
	blocked := []BlockedDate{{ListingID: "lst-1", Date: day(2026, 7, 13)}}
	if err := CheckRange(r, nil, blocked); err != nil {
		t.Fatalf("checkout-day block must not conflict: %v", err)
	}
}

func TestCheckRangeOverlapOnlyCountsActive(t *testing.T) {
	r := mustRange(t, day(2026, 7, 10), day(2026, 7, 13))

	pending := activeBooking(t, "bk-p", day(2026, 7, 12), day(2026, 7, 15))
	if err := CheckRange(r, []*booking.Booking{pending}, nil); !faults.IsKind(err, faults.KindConflict) {
		t.Fatalf("pending overlap err=%v want conflict", err)
	}

	cancelled := activeBooking(t, "bk-c", day(2026, 7, 12), day(2026, 7, 15))
	if err := cancelled.Cancel("freed", day(2026, 7, 1)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := CheckRange(r, []*booking.Booking{cancelled}, nil); err != nil {
		t.Fatalf("cancelled booking must not conflict: %v", err)
	}
}

func TestCheckRangeIntradayCheckoutKeepsBoundary(t *testing.T) {
	// An existing stay recorded with midday times still frees its checkout
	// day for the next arrival.
	existing := activeBooking(t, "bk-1",
		time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC),
	)
	r := mustRange(t, day(2026, 7, 14), day(2026, 7, 18))
	if err := CheckRange(r, []*booking.Booking{existing}, nil); err != nil {
		t.Fatalf("checkout-day arrival rejected: %v", err)
	}
}

func TestCheckRangeBlockedDayCatchesAfternoonArrival(t *testing.T) {
	// An afternoon check-in still occupies the whole check-in day.
	r := mustRange(t,
		time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 12, 10, 0, 0, 0, time.UTC),
	)
	blocked := []BlockedDate{{ListingID: "lst-1", Date: day(2026, 7, 10)}}
	if err := CheckRange(r, nil, blocked); !faults.IsKind(err, faults.KindConflict) {
		t.Fatalf("err=%v want conflict fault", err)
	}
}

func TestCheckRangeBackToBackAdmits(t *testing.T) {
	r := mustRange(t, day(2026, 7, 13), day(2026, 7, 16))
	existing := activeBooking(t, "bk-1", day(2026, 7, 10), day(2026, 7, 13))
	if err := CheckRange(r, []*booking.Booking{existing}, nil); err != nil {
		t.Fatalf("back-to-back stay rejected: %v", err)
	}
}
