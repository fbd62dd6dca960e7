package policies

import (
	"context"

	"staywise/internal/domain/shared/money"
)

// ChargeRequest initiates collection for an admitted reservation. The
// collaborator reports the outcome asynchronously through the webhook.
type ChargeRequest struct {
	BookingID   string
	Amount      money.Money
	Destination string
	Metadata    map[string]string
}

type PaymentsPort interface {
	InitiateCharge(ctx context.Context, req ChargeRequest) (string, error)
}
