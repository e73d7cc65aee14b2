package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is a rendered outbound notification.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Notifier delivers a message to its recipients. Delivery is best-effort
// from the caller's point of view; errors are for the dispatcher to log
// and retry, never to fail a domain operation.
type Notifier interface {
	Send(ctx context.Context, m Message) error
}

// LogNotifier writes messages to the logger. Default sink for development.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Send(_ context.Context, m Message) error {
	n.Log.Info().
		Strs("to", m.To).
		Str("subject", m.Subject).
		Msg("notification delivered to log sink")
	return nil
}
