package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a range from calendar days. Both ends are truncated to
// midnight UTC: booking boundaries are dates, not instants, so an afternoon
// arrival still occupies its whole check-in day and a checkout time never
// bleeds into the next stay's check-in day.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: dateOnly(checkIn), CheckOut: dateOnly(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts whole nights; partial trailing days round up so a quote
// always covers the full stay.
func (dr DateRange) Nights() int {
	hours := dr.CheckOut.Sub(dr.CheckIn).Hours()
	nights := int(hours / 24)
	if hours > float64(nights)*24 {
		nights++
	}
	return nights
}

// Overlaps reports whether two half-open intervals share at least one night.
// A checkout on another stay's check-in day is not a conflict.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Days enumerates the calendar days covered by the range, checkout day excluded.
func (dr DateRange) Days() []time.Time {
	var days []time.Time
	for d := dateOnly(dr.CheckIn); d.Before(dr.CheckOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
