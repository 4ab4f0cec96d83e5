package audit

import (
	"context"
	"log/slog"
	"time"

	"vaultpay/pkg/requestcontext"
)

// Publisher emits events onto the worker inbox without blocking. If the
// buffer is full the event is dropped and logged; audit loss is preferable
// to stalling a transfer.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit records an event for the authenticated user. The timestamp and request
// ID are filled from the request context when not already set.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", event.Action,
			"email", event.Email,
		)
	}
}
