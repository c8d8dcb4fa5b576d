package eventbus

import (
	"fmt"

	"github.com/weftlabs/weft/pkg/events"
)

// emptyEvent returns a zero event of the given type for unmarshaling.
func emptyEvent(eventType events.EventType) (any, error) {
	switch eventType {
	case events.ExecutionStartedEvent:
		return &events.ExecutionStarted{}, nil
	case events.ExecutionCompletedEvent:
		return &events.ExecutionCompleted{}, nil
	case events.ExecutionFailedEvent:
		return &events.ExecutionFailed{}, nil
	case events.ExecutionCancelledEvent:
		return &events.ExecutionCancelled{}, nil
	case events.NodeStartedEvent:
		return &events.NodeStarted{}, nil
	case events.NodeCompletedEvent:
		return &events.NodeCompleted{}, nil
	case events.NodeFailedEvent:
		return &events.NodeFailed{}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
