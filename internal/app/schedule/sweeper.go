package schedule

import (
	"context"
	"log/slog"
	"time"

	"staywise/internal/app/commands"
	bookingapp "staywise/internal/app/handlers/booking"
	"staywise/internal/app/uow"
)

// CheckoutSweeper periodically marks confirmed bookings whose checkout has
// passed as completed. Deployments that run reconciliation elsewhere simply
// don't start it.
type CheckoutSweeper struct {
	Commands   commands.Bus
	UoWFactory uow.UoWFactory
	Interval   time.Duration
	Logger     *slog.Logger
}

func (s *CheckoutSweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *CheckoutSweeper) sweepOnce(ctx context.Context) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		s.warn("sweep begin failed", err)
		return
	}
	defer func() { _ = unit.Rollback(ctx) }()

	listings, err := unit.Listings().All(ctx)
	if err != nil {
		s.warn("sweep listing scan failed", err)
		return
	}
	for _, l := range listings {
		cmd := bookingapp.CompleteStaysCommand{ListingID: string(l.ID)}
		if _, err := commands.Dispatch[bookingapp.CompleteStaysCommand, *bookingapp.CompleteStaysResult](ctx, s.Commands, cmd); err != nil {
			s.warn("sweep dispatch failed", err)
		}
	}
}

func (s *CheckoutSweeper) warn(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg, "error", err)
	}
}
