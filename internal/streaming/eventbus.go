package streaming

import (
	"context"
	"strconv"
	"sync"

	"hiveguard/pkg/logger"
)

// remotePublisher is the part of NATSPublisher the bus depends on
type remotePublisher interface {
	IsConnected() bool
	PublishCallEvent(ctx context.Context, event *CallEvent) error
}

// EventBus distributes call events to NATS and in-process subscribers
type EventBus struct {
	remote remotePublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]subscriber
	nextID      int
}

type subscriber struct {
	ch  chan *CallEvent
	sub *Subscription
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	eb := &EventBus{
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]subscriber),
	}
	if nats != nil {
		eb.remote = nats
	}
	return eb
}

// Publish sends event to NATS when connected and to every matching local
// subscriber. A NATS failure is logged, not returned.
func (eb *EventBus) Publish(ctx context.Context, event *CallEvent) error {
	if eb.remote != nil && eb.remote.IsConnected() {
		if err := eb.remote.PublishCallEvent(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, s := range eb.subscribers {
		if s.sub != nil && !s.sub.Matches(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return nil
}

// Subscribe registers a local subscriber. The returned func unsubscribes and
// closes the channel.
func (eb *EventBus) Subscribe(sub *Subscription) (<-chan *CallEvent, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := strconv.Itoa(eb.nextID)
	ch := make(chan *CallEvent, 100)
	eb.subscribers[id] = subscriber{ch: ch, sub: sub}
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if s, ok := eb.subscribers[id]; ok {
			close(s.ch)
			delete(eb.subscribers, id)
			eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
		}
	}

	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close drops all subscribers
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, s := range eb.subscribers {
		close(s.ch)
		delete(eb.subscribers, id)
	}
}
