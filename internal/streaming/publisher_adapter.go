package streaming

import (
	"context"

	"hiveguard/internal/domain/models"
)

// EventBusPublisher implements services.EventPublisher on top of the EventBus.
// NATS and the WebSocket hub both receive events through the bus.
type EventBusPublisher struct {
	eventBus *EventBus
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus) *EventBusPublisher {
	return &EventBusPublisher{eventBus: eventBus}
}

// PublishCallAnalyzed publishes an event for an analyzed call
func (p *EventBusPublisher) PublishCallAnalyzed(ctx context.Context, result models.AnalysisResult) error {
	return p.eventBus.Publish(ctx, NewCallEvent(result))
}
