package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"staywise/internal/app/policies"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// KafkaNotifier publishes notification requests to a topic consumed by the
// delivery service. The recipient id is the partition key so one user's
// notifications stay ordered.
type KafkaNotifier struct {
	Producer Publisher
	Topic    string
}

type notification struct {
	To       string    `json:"to"`
	Template string    `json:"template"`
	Data     any       `json:"data,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

func (n *KafkaNotifier) Send(ctx context.Context, to string, template string, data any) error {
	payload, err := json.Marshal(notification{
		To:       to,
		Template: template,
		Data:     data,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.Producer.Publish(ctx, n.Topic, to, payload, map[string]string{
		"content-type": "application/json",
	})
}

var _ policies.Notifier = (*KafkaNotifier)(nil)

// LogNotifier just records the notification. Used when no broker is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, to string, template string, data any) error {
	if n.Logger != nil {
		n.Logger.Info("notification", "to", to, "template", template)
	}
	return nil
}

var _ policies.Notifier = (*LogNotifier)(nil)
