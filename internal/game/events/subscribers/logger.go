package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/conquest/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	// Add event-specific fields based on type
	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Strs("turn_order", e.TurnOrder).
			Bool("instant_fill", e.InstantFill)

	case *events.GameEndedEvent:
		logEvent.
			Str("winner", e.Winner).
			Str("reason", e.Reason).
			Int("final_turn", e.FinalTurn)

	case *events.TurnStartedEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Int("turn", e.Metadata.Turn).
			Int("reinforcements", e.Reinforcements).
			Bool("must_trade", e.MustTrade).
			Bool("in_pregame", e.InPregame)

	case *events.TroopsDeployedEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Str("territory", e.Territory).
			Int("count", e.Count).
			Bool("claimed", e.Claimed)

	case *events.CombatResolvedEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Str("defender_id", e.DefenderID).
			Str("attacker", e.Attacker).
			Str("target", e.Target).
			Ints("attacker_dice", e.AttackerDice).
			Ints("defender_dice", e.DefenderDice).
			Int("attacker_losses", e.AttackerLosses).
			Int("defender_losses", e.DefenderLosses).
			Bool("conquered", e.Conquered)

	case *events.TerritoryConqueredEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Str("previous_owner", e.PreviousOwner).
			Str("territory", e.Territory).
			Int("troops_moved_in", e.TroopsMovedIn)

	case *events.TroopsMovedEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Str("from", e.From).
			Str("to", e.To).
			Int("count", e.Count).
			Bool("after_conquest", e.AfterConquest)

	case *events.CardsTradedEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Strs("cards", e.Cards).
			Int("reward", e.Reward).
			Str("bonus_territory", e.BonusTerritory)

	case *events.PlayerEliminatedEvent:
		logEvent.
			Str("player_id", e.Metadata.PlayerID).
			Str("eliminated_by", e.EliminatedBy)

	case *events.PlayerResignedEvent:
		logEvent.Str("player_id", e.Metadata.PlayerID)

	case *events.PlayerWonEvent:
		logEvent.Str("player_id", e.Metadata.PlayerID)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Game event")
}
