package notification

import (
	"context"
	"log/slog"
)

const (
	// KindPushAccepted indicates the gateway accepted a payment request.
	KindPushAccepted = "push_accepted"
	// KindPaymentOutcome indicates a callback resolved a pending transaction.
	KindPaymentOutcome = "payment_outcome"
)

// Message describes a notification payload. Reference carries whichever
// correlation identifier the event has (order number or checkout request id).
type Message struct {
	Kind      string
	Reference string
	Body      string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "reference", message.Reference, "body", message.Body)
	return nil
}
