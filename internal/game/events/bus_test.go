package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeGameStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	bus.Publish(NewGameStartedEvent("7", []string{"alice", "bob"}, false))

	assert.True(t, received, "Event handler should have been called")
	require.NotNil(t, receivedEvent)
	assert.Equal(t, TypeGameStarted, receivedEvent.Type())
	assert.Equal(t, "7", receivedEvent.GameID())
	assert.False(t, receivedEvent.Timestamp().IsZero())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	handler1Called := false
	handler2Called := false

	id1 := bus.SubscribeFunc(TypeTurnStarted, func(e Event) {
		handler1Called = true
	})
	id2 := bus.SubscribeFunc(TypeTurnStarted, func(e Event) {
		handler2Called = true
	})

	bus.Publish(NewTurnStartedEvent("7", "alice", 1, 3, false, false))

	assert.True(t, handler1Called, "Handler 1 should have been called")
	assert.True(t, handler2Called, "Handler 2 should have been called")
	assert.NotEqual(t, id1, id2)
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypePlayerEliminated: true,
			TypePlayerWon:        true,
		},
	}
	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.PublishAll([]Event{
		NewPlayerEliminatedEvent("7", "bob", "alice", 12),
		NewTurnStartedEvent("7", "alice", 13, 5, false, false),
		NewPlayerWonEvent("7", "alice", 13),
	})

	require.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypePlayerEliminated, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypePlayerWon, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(NewPlayerWonEvent("7", "alice", 13))
	assert.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestEventBusRecoversFromPanics(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	called := false
	bus.SubscribeFunc(TypeCardsTraded, func(e Event) {
		panic("boom")
	})
	bus.SubscribeFunc(TypeCardsTraded, func(e Event) {
		called = true
	})

	assert.NotPanics(t, func() {
		bus.Publish(NewCardsTradedEvent("7", "alice", 4, []string{"Wild"}, 4, ""))
	})
	assert.True(t, called, "later handlers still run after a panic")
}

func TestEventBusPublishAllKeepsOrder(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	var got []string
	record := func(e Event) { got = append(got, e.Type()) }
	bus.SubscribeFunc(TypeTerritoryConquered, record)
	bus.SubscribeFunc(TypePlayerEliminated, record)
	bus.SubscribeFunc(TypePlayerWon, record)

	bus.PublishAll(nil)
	assert.Empty(t, got)

	bus.PublishAll([]Event{
		NewPlayerEliminatedEvent("7", "bob", "alice", 12),
		NewPlayerWonEvent("7", "alice", 12),
	})
	assert.Equal(t, []string{TypePlayerEliminated, TypePlayerWon}, got)
}

func TestEventsCarryUniqueIDs(t *testing.T) {
	a := NewPlayerResignedEvent("7", "carol", 2)
	b := NewPlayerResignedEvent("7", "carol", 2)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
