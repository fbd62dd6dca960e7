package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staywise/internal/app/commands"
	BookingApp "staywise/internal/app/handlers/booking"
)

// PaymentWebhookHandler receives settlement callbacks from the payments
// collaborator and turns them into booking state transitions.
type PaymentWebhookHandler struct {
	Commands commands.Bus
}

type paymentWebhookRequest struct {
	BookingID string `json:"booking_id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"` // "settled" or "failed"
	Reason    string `json:"reason"`
}

func (h PaymentWebhookHandler) Receive(c *gin.Context) {
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id is required"})
		return
	}

	switch req.Status {
	case "settled":
		cmd := BookingApp.ConfirmBookingCommand{BookingID: req.BookingID, PaymentID: req.PaymentID}
		if _, err := commands.Dispatch[BookingApp.ConfirmBookingCommand, *BookingApp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd); err != nil {
			respondError(c, err)
			return
		}
	case "failed":
		reason := req.Reason
		if reason == "" {
			reason = "payment failed"
		}
		cmd := BookingApp.CancelBookingCommand{BookingID: req.BookingID, Reason: reason}
		if _, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd); err != nil {
			respondError(c, err)
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be settled or failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

var _ PaymentWebhookHTTP = PaymentWebhookHandler{}
