package middleware

import (
	"context"
	"log/slog"
	"time"

	"staywise/internal/app/commands"
	"staywise/internal/domain/faults"
)

// CommandLogging records each dispatched command with its outcome kind.
func CommandLogging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			if logger == nil {
				return res, err
			}
			if err != nil {
				logger.Warn("command rejected", "key", cmd.Key(), "kind", string(faults.KindOf(err)), "error", err, "duration", time.Since(start))
			} else {
				logger.Info("command handled", "key", cmd.Key(), "duration", time.Since(start))
			}
			return res, err
		})
	}
}
