package policies

import "context"

// Notifier delivers booking state changes to guests and hosts. Calls are
// fire-and-forget; delivery failures never fail the transition that
// triggered them.
type Notifier interface {
	Send(ctx context.Context, to string, template string, data any) error
}
