package booking

import (
	"context"
	"time"

	"staywise/internal/app/queries"
	"staywise/internal/app/support"
	"staywise/internal/app/uow"
	"staywise/internal/domain/faults"
)

const guestBookingsKey = "reservation.guest_list"

type GuestBookingsQuery struct {
	GuestID string
}

func (q GuestBookingsQuery) Key() string { return guestBookingsKey }

type GuestBookingView struct {
	BookingID  string    `json:"booking_id"`
	ListingID  string    `json:"listing_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"total_price"`
	ServiceFee int64     `json:"service_fee"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
}

type GuestBookingsResult struct {
	Items []GuestBookingView `json:"items"`
}

type GuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GuestBookingsHandler) Handle(ctx context.Context, q GuestBookingsQuery) (*GuestBookingsResult, error) {
	if q.GuestID == "" {
		return nil, faults.Validationf("guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, q.GuestID)
	if err != nil {
		return nil, err
	}
	items := make([]GuestBookingView, 0, len(bookings))
	for _, bk := range bookings {
		items = append(items, GuestBookingView{
			BookingID:  string(bk.ID),
			ListingID:  string(bk.ListingID),
			CheckIn:    bk.Range.CheckIn,
			CheckOut:   bk.Range.CheckOut,
			Guests:     bk.Guests,
			Status:     string(bk.State),
			TotalPrice: bk.Price.Total.Amount,
			ServiceFee: bk.Price.ServiceFee.Amount,
			Currency:   bk.Price.Total.Currency,
			CreatedAt:  bk.CreatedAt,
		})
	}
	return &GuestBookingsResult{Items: items}, nil
}

var _ queries.Handler[GuestBookingsQuery, *GuestBookingsResult] = (*GuestBookingsHandler)(nil)
