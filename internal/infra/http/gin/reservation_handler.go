package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staywise/internal/app/commands"
	BookingApp "staywise/internal/app/handlers/booking"
	"staywise/internal/app/queries"
)

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createReservationRequest struct {
	ListingID string    `json:"listing_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Guests    int       `json:"guests"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	guest, ok := requireCaller(c)
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.AdmitReservationCommand{
		CommandID:       generateCommandID(),
		ListingID:       req.ListingID,
		GuestID:         guest,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.AdmitReservationCommand, *BookingApp.AdmitReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type cancelReservationRequest struct {
	Reason string `json:"reason"`
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req cancelReservationRequest
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.CancelBookingCommand{
		BookingID:   c.Param("id"),
		RequestedBy: caller,
		Reason:      req.Reason,
	}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type confirmReservationRequest struct {
	PaymentID string `json:"payment_id"`
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	var req confirmReservationRequest
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.ConfirmBookingCommand{
		BookingID: c.Param("id"),
		PaymentID: req.PaymentID,
	}
	result, err := commands.Dispatch[BookingApp.ConfirmBookingCommand, *BookingApp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) ListMine(c *gin.Context) {
	guest, ok := requireCaller(c)
	if !ok {
		return
	}
	result, err := queries.Ask[BookingApp.GuestBookingsQuery, *BookingApp.GuestBookingsResult](c.Request.Context(), h.Queries, BookingApp.GuestBookingsQuery{GuestID: guest})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ ReservationHTTP = ReservationHandler{}
