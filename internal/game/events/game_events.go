package events

// Event type constants
const (
	TypeGameStarted        = "game.started"
	TypeGameEnded          = "game.ended"
	TypeTurnStarted        = "turn.started"
	TypeTroopsDeployed     = "troops.deployed"
	TypeCombatResolved     = "combat.resolved"
	TypeTerritoryConquered = "territory.conquered"
	TypeTroopsMoved        = "troops.moved"
	TypeCardsTraded        = "cards.traded"
	TypeCardDrawn          = "card.drawn"
	TypePlayerEliminated   = "player.eliminated"
	TypePlayerResigned     = "player.resigned"
	TypePlayerWon          = "player.won"
)

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	TurnOrder   []string `json:"turn_order"`
	InstantFill bool     `json:"instant_fill"`
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, turnOrder []string, instantFill bool) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:   newBase(TypeGameStarted, gameID),
		TurnOrder:   turnOrder,
		InstantFill: instantFill,
	}
}

// GameEndedEvent is published when a game is retired
type GameEndedEvent struct {
	BaseEvent
	Winner    string `json:"winner"`
	Reason    string `json:"reason"`
	FinalTurn int    `json:"final_turn"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID, winner, reason string, finalTurn int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		Reason:    reason,
		FinalTurn: finalTurn,
	}
}

// TurnStartedEvent is published whenever the active player changes
type TurnStartedEvent struct {
	BaseEvent
	Metadata       EventMetadata `json:"metadata"`
	Reinforcements int           `json:"reinforcements"`
	MustTrade      bool          `json:"must_trade"`
	InPregame      bool          `json:"in_pregame"`
}

// NewTurnStartedEvent creates a new TurnStartedEvent
func NewTurnStartedEvent(gameID, playerID string, turn, reinforcements int, mustTrade, inPregame bool) *TurnStartedEvent {
	return &TurnStartedEvent{
		BaseEvent:      newBase(TypeTurnStarted, gameID),
		Metadata:       EventMetadata{PlayerID: playerID, Turn: turn},
		Reinforcements: reinforcements,
		MustTrade:      mustTrade,
		InPregame:      inPregame,
	}
}

// TroopsDeployedEvent is published when reinforcements are placed
type TroopsDeployedEvent struct {
	BaseEvent
	Metadata  EventMetadata `json:"metadata"`
	Territory string        `json:"territory"`
	Count     int           `json:"count"`
	Claimed   bool          `json:"claimed"`
}

// NewTroopsDeployedEvent creates a new TroopsDeployedEvent
func NewTroopsDeployedEvent(gameID, playerID string, turn int, territory string, count int, claimed bool) *TroopsDeployedEvent {
	return &TroopsDeployedEvent{
		BaseEvent: newBase(TypeTroopsDeployed, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Turn: turn},
		Territory: territory,
		Count:     count,
		Claimed:   claimed,
	}
}

// CombatResolvedEvent is published after every dice exchange
type CombatResolvedEvent struct {
	BaseEvent
	Metadata       EventMetadata `json:"metadata"`
	DefenderID     string        `json:"defender_id"`
	Attacker       string        `json:"attacker"`
	Target         string        `json:"target"`
	AttackerDice   []int         `json:"attacker_dice"`
	DefenderDice   []int         `json:"defender_dice"`
	AttackerLosses int           `json:"attacker_losses"`
	DefenderLosses int           `json:"defender_losses"`
	Conquered      bool          `json:"conquered"`
}

// NewCombatResolvedEvent creates a new CombatResolvedEvent
func NewCombatResolvedEvent(gameID, playerID, defenderID string, turn int, attacker, target string,
	attackerDice, defenderDice []int, attackerLosses, defenderLosses int, conquered bool) *CombatResolvedEvent {
	return &CombatResolvedEvent{
		BaseEvent:      newBase(TypeCombatResolved, gameID),
		Metadata:       EventMetadata{PlayerID: playerID, Turn: turn},
		DefenderID:     defenderID,
		Attacker:       attacker,
		Target:         target,
		AttackerDice:   attackerDice,
		DefenderDice:   defenderDice,
		AttackerLosses: attackerLosses,
		DefenderLosses: defenderLosses,
		Conquered:      conquered,
	}
}

// TerritoryConqueredEvent is published when a territory changes hands by force
type TerritoryConqueredEvent struct {
	BaseEvent
	Metadata      EventMetadata `json:"metadata"`
	PreviousOwner string        `json:"previous_owner"`
	Territory     string        `json:"territory"`
	TroopsMovedIn int           `json:"troops_moved_in"`
}

// NewTerritoryConqueredEvent creates a new TerritoryConqueredEvent
func NewTerritoryConqueredEvent(gameID, playerID, previousOwner string, turn int, territory string, movedIn int) *TerritoryConqueredEvent {
	return &TerritoryConqueredEvent{
		BaseEvent:     newBase(TypeTerritoryConquered, gameID),
		Metadata:      EventMetadata{PlayerID: playerID, Turn: turn},
		PreviousOwner: previousOwner,
		Territory:     territory,
		TroopsMovedIn: movedIn,
	}
}

// TroopsMovedEvent is published for fortifications and post-conquest moves
type TroopsMovedEvent struct {
	BaseEvent
	Metadata      EventMetadata `json:"metadata"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	Count         int           `json:"count"`
	AfterConquest bool          `json:"after_conquest"`
}

// NewTroopsMovedEvent creates a new TroopsMovedEvent
func NewTroopsMovedEvent(gameID, playerID string, turn int, from, to string, count int, afterConquest bool) *TroopsMovedEvent {
	return &TroopsMovedEvent{
		BaseEvent:     newBase(TypeTroopsMoved, gameID),
		Metadata:      EventMetadata{PlayerID: playerID, Turn: turn},
		From:          from,
		To:            to,
		Count:         count,
		AfterConquest: afterConquest,
	}
}

// CardsTradedEvent is published when a set is redeemed
type CardsTradedEvent struct {
	BaseEvent
	Metadata       EventMetadata `json:"metadata"`
	Cards          []string      `json:"cards"`
	Reward         int           `json:"reward"`
	BonusTerritory string        `json:"bonus_territory,omitempty"`
}

// NewCardsTradedEvent creates a new CardsTradedEvent
func NewCardsTradedEvent(gameID, playerID string, turn int, cards []string, reward int, bonusTerritory string) *CardsTradedEvent {
	return &CardsTradedEvent{
		BaseEvent:      newBase(TypeCardsTraded, gameID),
		Metadata:       EventMetadata{PlayerID: playerID, Turn: turn},
		Cards:          cards,
		Reward:         reward,
		BonusTerritory: bonusTerritory,
	}
}

// CardDrawnEvent is published when a conquest earns a card. The card itself
// stays private to the player.
type CardDrawnEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	HandSize int           `json:"hand_size"`
}

// NewCardDrawnEvent creates a new CardDrawnEvent
func NewCardDrawnEvent(gameID, playerID string, turn, handSize int) *CardDrawnEvent {
	return &CardDrawnEvent{
		BaseEvent: newBase(TypeCardDrawn, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Turn: turn},
		HandSize:  handSize,
	}
}

// PlayerEliminatedEvent is published when a player loses their last territory
type PlayerEliminatedEvent struct {
	BaseEvent
	Metadata     EventMetadata `json:"metadata"`
	EliminatedBy string        `json:"eliminated_by"`
}

// NewPlayerEliminatedEvent creates a new PlayerEliminatedEvent
func NewPlayerEliminatedEvent(gameID, playerID, eliminatedBy string, turn int) *PlayerEliminatedEvent {
	return &PlayerEliminatedEvent{
		BaseEvent:    newBase(TypePlayerEliminated, gameID),
		Metadata:     EventMetadata{PlayerID: playerID, Turn: turn},
		EliminatedBy: eliminatedBy,
	}
}

// PlayerResignedEvent is published when a player leaves the game voluntarily
type PlayerResignedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
}

// NewPlayerResignedEvent creates a new PlayerResignedEvent
func NewPlayerResignedEvent(gameID, playerID string, turn int) *PlayerResignedEvent {
	return &PlayerResignedEvent{
		BaseEvent: newBase(TypePlayerResigned, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Turn: turn},
	}
}

// PlayerWonEvent is published when a player wins
type PlayerWonEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
}

// NewPlayerWonEvent creates a new PlayerWonEvent
func NewPlayerWonEvent(gameID, playerID string, turn int) *PlayerWonEvent {
	return &PlayerWonEvent{
		BaseEvent: newBase(TypePlayerWon, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Turn: turn},
	}
}
