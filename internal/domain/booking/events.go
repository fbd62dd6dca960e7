package booking

import (
	"time"

	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/daterange"
	"staywise/internal/domain/shared/money"
)

type ReservationAdmitted struct {
	BookingID   BookingID
	ListingID   listings.ListingID
	GuestID     string
	Range       daterange.DateRange
	GuestsCount int
	Total       money.Money
	At          time.Time
}

func (e ReservationAdmitted) EventName() string     { return "reservation.admitted" }
func (e ReservationAdmitted) AggregateID() string   { return string(e.BookingID) }
func (e ReservationAdmitted) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	BookingID BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	At        time.Time
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	BookingID BookingID
	ListingID listings.ListingID
	Reason    string
	At        time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.BookingID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type StayCompleted struct {
	BookingID BookingID
	ListingID listings.ListingID
	At        time.Time
}

func (e StayCompleted) EventName() string     { return "reservation.completed" }
func (e StayCompleted) AggregateID() string   { return string(e.BookingID) }
func (e StayCompleted) OccurredAt() time.Time { return e.At }
