package core

import (
	"errors"
	"fmt"
)

// Rule violations. Each is recoverable and reported back to the player.
var (
	ErrNotInGame                = errors.New("player is not in a game")
	ErrNotYourTurn              = errors.New("not this player's turn")
	ErrWrongPhase               = errors.New("operation not allowed in the current turn stage")
	ErrUnknownTerritory         = errors.New("unknown territory")
	ErrNotOwner                 = errors.New("territory not owned by player")
	ErrNotAdjacent              = errors.New("territories are not adjacent")
	ErrSelfAttack               = errors.New("cannot attack own territory")
	ErrInsufficientArmy         = errors.New("insufficient army to attack")
	ErrInsufficientTroopsToMove = errors.New("move would leave territory empty")
	ErrInvalidTroopCount        = errors.New("invalid troop count")
	ErrTooManyTroops            = errors.New("too many troops")
	ErrClaimPhaseViolation      = errors.New("unclaimed territories remain")
	ErrIllegalCardSet           = errors.New("illegal card set")
	ErrNoCompleteSet            = errors.New("no complete card set available")
	ErrCardIndexOutOfRange      = errors.New("card index out of range")
	ErrNoPendingAttack          = errors.New("no pending attack")
	ErrNotEnoughCards           = errors.New("not enough cards to trade")
	ErrGameOver                 = errors.New("game is over")
	ErrInvalidPlayerCount       = errors.New("invalid player count")
	ErrDuplicatePlayer          = errors.New("duplicate player")
	ErrAlreadyInGame            = errors.New("player is already in a game")
	ErrInvalidCommand           = errors.New("invalid command")
)

var ruleViolations = []error{
	ErrNotInGame, ErrNotYourTurn, ErrWrongPhase, ErrUnknownTerritory, ErrNotOwner,
	ErrNotAdjacent, ErrSelfAttack, ErrInsufficientArmy, ErrInsufficientTroopsToMove,
	ErrInvalidTroopCount, ErrTooManyTroops, ErrClaimPhaseViolation, ErrIllegalCardSet,
	ErrNoCompleteSet, ErrCardIndexOutOfRange, ErrNoPendingAttack, ErrNotEnoughCards,
	ErrGameOver, ErrInvalidPlayerCount, ErrDuplicatePlayer, ErrAlreadyInGame, ErrInvalidCommand,
}

// IsRuleViolation reports whether err is a player-facing rule error rather
// than an infrastructure failure.
func IsRuleViolation(err error) bool {
	for _, target := range ruleViolations {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GameError provides context for a rejected operation
type GameError struct {
	Turn      int
	PlayerID  string
	Operation string
	Detail    string
	Err       error
}

func (e *GameError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = e.Detail
	}
	if e.PlayerID != "" {
		return fmt.Sprintf("turn %d: player %s %s: %s", e.Turn, e.PlayerID, e.Operation, msg)
	}
	return fmt.Sprintf("turn %d: %s: %s", e.Turn, e.Operation, msg)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// NewGameError creates a GameError with a formatted player-facing detail.
// An empty format leaves the detail to the underlying error text.
func NewGameError(turn int, playerID, operation string, err error, format string, args ...interface{}) *GameError {
	ge := &GameError{
		Turn:      turn,
		PlayerID:  playerID,
		Operation: operation,
		Err:       err,
	}
	if format != "" {
		ge.Detail = fmt.Sprintf(format, args...)
	}
	return ge
}

// Message returns the text to show the player for err.
func Message(err error) string {
	var ge *GameError
	if errors.As(err, &ge) {
		if ge.Detail != "" {
			return ge.Detail
		}
		return ge.Err.Error()
	}
	var ce *CardIndexError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}

// CardIndexError reports a card selection outside the player's hand
type CardIndexError struct {
	Index    int
	HandSize int
	// Absurd is set when no hand could ever be that large.
	Absurd bool
}

func (e *CardIndexError) Error() string {
	if e.Absurd {
		return fmt.Sprintf("no one has %d cards", e.Index)
	}
	if e.Index < 1 {
		return fmt.Sprintf("card numbers start at 1, got %d", e.Index)
	}
	return fmt.Sprintf("you don't have a card %d, you hold %d", e.Index, e.HandSize)
}

func (e *CardIndexError) Unwrap() error {
	return ErrCardIndexOutOfRange
}
