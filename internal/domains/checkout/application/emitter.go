package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

const emitTimeout = 5 * time.Second

// EventEmitter publishes lifecycle events off the settlement critical path.
// Emission is fire-and-forget: publish failures are logged and swallowed, and
// a caller cancelling its own context never cancels an in-flight emission.
type EventEmitter struct {
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewEventEmitter wires the emitter. A nil publisher disables emission.
func NewEventEmitter(publisher ports.EventPublisher, logger *slog.Logger) *EventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventEmitter{publisher: publisher, logger: logger}
}

// Emit hands the payload off to a detached goroutine and returns immediately.
func (e *EventEmitter) Emit(key string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := e.publisher.Publish(ctx, key, payload); err != nil {
			e.logger.Warn("event emission failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}()
}
