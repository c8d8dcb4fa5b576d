// Package eventbus carries execution lifecycle events between the engine and
// anything observing it. The engine works without a bus; when one is
// configured it receives every execution and node transition.
package eventbus

import (
	"context"

	"github.com/weftlabs/weft/pkg/events"
)

// Event is anything the engine can put on the bus. Concrete event types live
// in pkg/events.
type Event interface {
	GetType() events.EventType
}

// EventHandler consumes one decoded event. A non-nil error nacks the message
// so the transport can redeliver it.
type EventHandler func(ctx context.Context, event any) error

// EventPublisher emits events keyed by workflow, so transports that partition
// (Kafka) keep one workflow's events in order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber consumes events. Handlers are registered per event type
// with Handle before Subscribe starts the consume loop; event types with no
// handler are skipped.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventBus is the full publish/consume contract the daemons wire up.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
