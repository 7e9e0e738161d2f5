package subscribers_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/events/subscribers"
)

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &out))
	return out
}

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("test-logger", zerolog.New(&buf), zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeGameStarted))
	assert.True(t, logSub.InterestedIn("any.event.type"))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, logLine map[string]interface{})
	}{
		{
			name:  "CombatResolvedEvent",
			event: events.NewCombatResolvedEvent("3", "alice", "bob", 9, "Indonesia", "Siam", []int{6, 5, 4}, []int{3, 1}, 0, 2, true),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "alice", logLine["player_id"])
				assert.Equal(t, "bob", logLine["defender_id"])
				assert.Equal(t, "Siam", logLine["target"])
				assert.Equal(t, float64(2), logLine["defender_losses"])
				assert.Equal(t, true, logLine["conquered"])
			},
		},
		{
			name:  "TurnStartedEvent",
			event: events.NewTurnStartedEvent("3", "bob", 10, 7, true, false),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "bob", logLine["player_id"])
				assert.Equal(t, float64(7), logLine["reinforcements"])
				assert.Equal(t, true, logLine["must_trade"])
			},
		},
		{
			name:  "CardsTradedEvent",
			event: events.NewCardsTradedEvent("3", "alice", 11, []string{"Infantry (Peru)", "Wild", "Cavalry (Japan)"}, 6, "Peru"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(6), logLine["reward"])
				assert.Equal(t, "Peru", logLine["bonus_territory"])
			},
		},
		{
			name:  "PlayerEliminatedEvent",
			event: events.NewPlayerEliminatedEvent("3", "carol", "alice", 12),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "carol", logLine["player_id"])
				assert.Equal(t, "alice", logLine["eliminated_by"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logSub := subscribers.NewLoggerSubscriber("event-logger", zerolog.New(&buf), zerolog.InfoLevel)

			logSub.HandleEvent(tc.event)

			logLine := lastLogLine(t, &buf)
			assert.Equal(t, "Game event", logLine["message"])
			assert.Equal(t, "info", logLine["level"])
			assert.Equal(t, tc.event.Type(), logLine["event_type"])
			assert.Equal(t, "3", logLine["game_id"])
			tc.check(t, logLine)
		})
	}
}

func TestLoggerSubscriberWithFilter(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("filtered", zerolog.New(&buf), zerolog.InfoLevel)
	logSub.SetEventFilter([]string{events.TypePlayerWon})

	assert.True(t, logSub.InterestedIn(events.TypePlayerWon))
	assert.False(t, logSub.InterestedIn(events.TypeTurnStarted))

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeTurnStarted))
}

func TestLoggerSubscriberLogLevels(t *testing.T) {
	for _, level := range []zerolog.Level{zerolog.DebugLevel, zerolog.WarnLevel, zerolog.ErrorLevel} {
		t.Run(level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logSub := subscribers.NewLoggerSubscriber("levels", zerolog.New(&buf), level)
			logSub.HandleEvent(events.NewPlayerWonEvent("3", "alice", 20))

			assert.Equal(t, level.String(), lastLogLine(t, &buf)["level"])
		})
	}
}

func TestLoggerSubscriberDevelopmentMode(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("dev", zerolog.New(&buf), zerolog.InfoLevel)
	logSub.SetDevMode(true)

	logSub.HandleEvent(events.NewTroopsMovedEvent("3", "alice", 4, "Peru", "Brazil", 2, false))

	logLine := lastLogLine(t, &buf)
	data, ok := logLine["event_data"].(map[string]interface{})
	require.True(t, ok, "dev mode attaches the full event")
	assert.Equal(t, "Peru", data["from"])
	assert.Equal(t, float64(2), data["count"])
}

func TestLoggerSubscriberWithBus(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewEventBus(zerolog.Nop())
	bus.Subscribe(subscribers.NewLoggerSubscriber("bus-logger", zerolog.New(&buf), zerolog.InfoLevel))

	bus.Publish(events.NewGameStartedEvent("3", []string{"alice", "bob"}, true))

	logLine := lastLogLine(t, &buf)
	assert.Equal(t, events.TypeGameStarted, logLine["event_type"])
	assert.Equal(t, true, logLine["instant_fill"])
}
