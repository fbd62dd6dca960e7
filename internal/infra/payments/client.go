package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"staywise/internal/app/policies"
	"staywise/internal/domain/faults"
)

// Client talks to the external payments collaborator over HTTP. The
// collaborator answers with a charge id and later reports the outcome on
// the webhook; admission never waits for settlement.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Logger   *slog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Endpoint: endpoint,
		Logger:   logger,
	}
}

type chargeRequest struct {
	BookingID   string            `json:"booking_id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Destination string            `json:"destination,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type chargeResponse struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
}

func (c *Client) InitiateCharge(ctx context.Context, req policies.ChargeRequest) (string, error) {
	if c == nil || c.HTTP == nil || c.Endpoint == "" {
		return "", faults.Unavailable("payments endpoint not configured", nil)
	}
	payload := chargeRequest{
		BookingID:   req.BookingID,
		Amount:      req.Amount.Amount,
		Currency:    req.Amount.Currency,
		Destination: req.Destination,
		Metadata:    req.Metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/charges", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("payments request failed", req.BookingID, err)
		return "", faults.Unavailable("payments service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := faults.Unavailable(fmt.Sprintf("payments returned status %d: %s", resp.StatusCode, string(snippet)), nil)
		c.logError("payments returned error", req.BookingID, err)
		return "", err
	}

	var charge chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		c.logError("payments decode failed", req.BookingID, err)
		return "", faults.Unavailable("payments response malformed", err)
	}
	return charge.ChargeID, nil
}

func (c *Client) logError(msg string, bookingID string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "booking_id", bookingID, "error", err)
}

var _ policies.PaymentsPort = (*Client)(nil)
