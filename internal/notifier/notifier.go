package notifier

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier delivers formatted reports.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier is used when Telegram is not configured; messages only reach the log.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Send(text string) error {
	log.Debug().Str("component", "notifier").Str("text", text).Msg("notification dropped")
	return nil
}

func (n *NoopNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return n.Send(text)
}
