package events

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// EventBus delivers game events synchronously, in publish order. A panicking
// handler is logged and skipped; the remaining handlers still run.
type EventBus struct {
	subscribers  map[string]Subscriber
	funcHandlers map[string][]EventHandler
	mu           sync.RWMutex
	logger       zerolog.Logger
}

// NewEventBus creates an event bus that logs through logger
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers:  make(map[string]Subscriber),
		funcHandlers: make(map[string][]EventHandler),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a subscriber, replacing any earlier one with the same ID
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[subscriber.ID()] = subscriber
	eb.logger.Debug().
		Str("subscriber_id", subscriber.ID()).
		Msg("Subscriber added to event bus")
}

// Unsubscribe removes a subscriber from the event bus
func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	delete(eb.subscribers, subscriberID)
	eb.logger.Debug().
		Str("subscriber_id", subscriberID).
		Msg("Subscriber removed from event bus")
}

// SubscribeFunc registers handler for one event type and returns its ID
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], handler)
	handlerID := eventType + "_func_" + strconv.Itoa(len(eb.funcHandlers[eventType]))
	eb.logger.Debug().
		Str("event_type", eventType).
		Str("handler_id", handlerID).
		Msg("Function handler added to event bus")
	return handlerID
}

// SubscriberCount returns the number of registered subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Publish delivers one event to every interested subscriber and handler
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	eb.deliverLocked(event)
}

// PublishAll delivers a command's events in order. Subscribers registered
// while the batch is in flight see none of it.
func (eb *EventBus) PublishAll(evts []Event) {
	if len(evts) == 0 {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, e := range evts {
		eb.deliverLocked(e)
	}
}

func (eb *EventBus) deliverLocked(event Event) {
	eventType := event.Type()
	eb.logger.Debug().
		Str("event_type", eventType).
		Str("game_id", event.GameID()).
		Msg("Publishing event")

	for id, subscriber := range eb.subscribers {
		if !subscriber.InterestedIn(eventType) {
			continue
		}
		eb.guard(eventType, "subscriber_id", id, func() { subscriber.HandleEvent(event) })
	}
	for i, handler := range eb.funcHandlers[eventType] {
		eb.guard(eventType, "handler_id", eventType+"_func_"+strconv.Itoa(i+1), func() { handler(event) })
	}
}

// guard runs fn and logs a panic instead of propagating it.
func (eb *EventBus) guard(eventType, key, id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str(key, id).
				Str("event_type", eventType).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	fn()
}
