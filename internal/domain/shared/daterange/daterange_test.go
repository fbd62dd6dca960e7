package daterange

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	if _, err := New(day(2026, 7, 10), day(2026, 7, 10)); err == nil {
		t.Fatal("zero-length range accepted")
	}
	if _, err := New(day(2026, 7, 10), day(2026, 7, 5)); err == nil {
		t.Fatal("inverted range accepted")
	}
	if _, err := New(day(2026, 7, 10), day(2026, 7, 11)); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
}

func TestNewTruncatesToCalendarDays(t *testing.T) {
	dr, err := New(
		time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !dr.CheckIn.Equal(day(2026, 7, 10)) || !dr.CheckOut.Equal(day(2026, 7, 14)) {
		t.Fatalf("range=[%v,%v) want midnight bounds", dr.CheckIn, dr.CheckOut)
	}
	if got := dr.Nights(); got != 4 {
		t.Fatalf("nights=%d want=4", got)
	}

	// Two times on the same calendar day collapse to an empty range.
	_, err = New(
		time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 10, 20, 0, 0, 0, time.UTC),
	)
	if err == nil {
		t.Fatal("same-day range accepted")
	}
}

func TestNightsRoundsPartialDaysUp(t *testing.T) {
	dr, _ := New(day(2026, 7, 10), day(2026, 7, 13))
	if got := dr.Nights(); got != 3 {
		t.Fatalf("nights=%d want=3", got)
	}

	// 2 days and 6 hours counts as 3 nights.
	partial := DateRange{
		CheckIn:  time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 7, 12, 18, 0, 0, 0, time.UTC),
	}
	if got := partial.Nights(); got != 3 {
		t.Fatalf("partial nights=%d want=3", got)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a, _ := New(day(2026, 7, 10), day(2026, 7, 15))

	backToBack, _ := New(day(2026, 7, 15), day(2026, 7, 20))
	if a.Overlaps(backToBack) {
		t.Fatal("back-to-back stays sharing a boundary day must not overlap")
	}
	if backToBack.Overlaps(a) {
		t.Fatal("overlap must be symmetric")
	}

	inside, _ := New(day(2026, 7, 12), day(2026, 7, 13))
	if !a.Overlaps(inside) {
		t.Fatal("contained range must overlap")
	}

	straddle, _ := New(day(2026, 7, 14), day(2026, 7, 16))
	if !a.Overlaps(straddle) {
		t.Fatal("straddling range must overlap")
	}

	before, _ := New(day(2026, 7, 1), day(2026, 7, 10))
	if a.Overlaps(before) {
		t.Fatal("range ending at check-in must not overlap")
	}
}

func TestContainsDate(t *testing.T) {
	dr, _ := New(day(2026, 7, 10), day(2026, 7, 12))
	if !dr.ContainsDate(day(2026, 7, 10)) {
		t.Fatal("check-in day must be contained")
	}
	if !dr.ContainsDate(day(2026, 7, 11)) {
		t.Fatal("middle day must be contained")
	}
	if dr.ContainsDate(day(2026, 7, 12)) {
		t.Fatal("checkout day must not be contained")
	}
}

func TestDaysExcludesCheckout(t *testing.T) {
	dr, _ := New(day(2026, 7, 10), day(2026, 7, 13))
	days := dr.Days()
	if len(days) != 3 {
		t.Fatalf("days=%d want=3", len(days))
	}
	if !days[0].Equal(day(2026, 7, 10)) || !days[2].Equal(day(2026, 7, 12)) {
		t.Fatalf("unexpected day enumeration: %v", days)
	}
}
