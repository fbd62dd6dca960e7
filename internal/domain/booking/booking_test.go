package booking

import (
	"errors"
	"testing"
	"time"

	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/daterange"
	"staywise/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	dr, err := daterange.New(day(2026, 7, 10), day(2026, 7, 13))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	quote, err := NewQuote(money.Must(10000, "USD"), dr)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	bk, err := New(CreateParams{
		ID:        "bk-1",
		ListingID: listings.ListingID("lst-1"),
		GuestID:   "guest-1",
		Range:     dr,
		Guests:    2,
		Price:     quote,
		CreatedAt: day(2026, 7, 1),
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	return bk
}

func TestNewBookingStartsPending(t *testing.T) {
	bk := newTestBooking(t)
	if bk.State != StatePending {
		t.Fatalf("state=%s want=%s", bk.State, StatePending)
	}
	events := bk.PendingEvents()
	if len(events) != 1 || events[0].EventName() != "reservation.admitted" {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestQuoteArithmetic(t *testing.T) {
	bk := newTestBooking(t)
	if bk.Price.Nights != 3 {
		t.Fatalf("nights=%d want=3", bk.Price.Nights)
	}
	if bk.Price.Subtotal.Amount != 30000 {
		t.Fatalf("subtotal=%d want=30000", bk.Price.Subtotal.Amount)
	}
	if bk.Price.ServiceFee.Amount != 3000 {
		t.Fatalf("service fee=%d want=3000", bk.Price.ServiceFee.Amount)
	}
	if bk.Price.Total.Amount != 33000 {
		t.Fatalf("total=%d want=33000", bk.Price.Total.Amount)
	}
}

func TestConfirmOnlyFromPending(t *testing.T) {
	bk := newTestBooking(t)
	if err := bk.Confirm("pay-1", day(2026, 7, 2)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if bk.State != StateConfirmed || bk.PaymentID != "pay-1" {
		t.Fatalf("state=%s payment=%s", bk.State, bk.PaymentID)
	}
	if err := bk.Confirm("pay-2", day(2026, 7, 3)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double confirm err=%v want=%v", err, ErrInvalidState)
	}
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	pending := newTestBooking(t)
	if err := pending.Cancel("changed plans", day(2026, 7, 2)); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if pending.State != StateCancelled {
		t.Fatalf("state=%s want=%s", pending.State, StateCancelled)
	}
	if err := pending.Cancel("again", day(2026, 7, 3)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel cancelled err=%v want=%v", err, ErrInvalidState)
	}

	confirmed := newTestBooking(t)
	_ = confirmed.Confirm("pay-1", day(2026, 7, 2))
	if err := confirmed.Cancel("host issue", day(2026, 7, 3)); err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
}

func TestCompleteRequiresConfirmedAndCheckoutPassed(t *testing.T) {
	bk := newTestBooking(t)
	if err := bk.Complete(day(2026, 8, 1)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete pending err=%v want=%v", err, ErrInvalidState)
	}

	_ = bk.Confirm("pay-1", day(2026, 7, 2))
	if err := bk.Complete(day(2026, 7, 12)); !errors.Is(err, ErrStayNotOver) {
		t.Fatalf("early complete err=%v want=%v", err, ErrStayNotOver)
	}
	if err := bk.Complete(day(2026, 7, 13)); err != nil {
		t.Fatalf("complete at checkout: %v", err)
	}
	if bk.State != StateCompleted {
		t.Fatalf("state=%s want=%s", bk.State, StateCompleted)
	}
}

func TestActiveStates(t *testing.T) {
	if !StatePending.Active() || !StateConfirmed.Active() {
		t.Fatal("pending and confirmed must hold the calendar")
	}
	if StateCancelled.Active() || StateCompleted.Active() {
		t.Fatal("cancelled and completed must free the calendar")
	}
}

func TestServiceFeeRoundsHalfUp(t *testing.T) {
	dr, _ := daterange.New(day(2026, 7, 10), day(2026, 7, 11))
	quote, err := NewQuote(money.Must(10005, "USD"), dr)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// 10% of 10005 is 1000.5, rounds to 1001.
	if quote.ServiceFee.Amount != 1001 {
		t.Fatalf("fee=%d want=1001", quote.ServiceFee.Amount)
	}
	if quote.Total.Amount != 11006 {
		t.Fatalf("total=%d want=11006", quote.Total.Amount)
	}
}
