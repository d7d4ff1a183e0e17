// internal/events/handler.go
package events

import (
	"context"
)

// Handler consumes audit events of a single type.
type Handler interface {
	// Handle consumes one audit event. Should not block; delivery is
	// sequential and a slow handler stalls the bus.
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription is a handle on a registered audit-event consumer.
type Subscription interface {
	// Unsubscribe stops delivery to the consumer.
	Unsubscribe()
}

type subscription struct {
	id       string
	eventBus *Bus
	typ      EventType
}

// Unsubscribe removes this consumer from the bus.
func (s *subscription) Unsubscribe() {
	s.eventBus.unsubscribe(s.id, s.typ)
}
