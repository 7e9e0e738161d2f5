package states

import "fmt"

// TurnStage governs which commands the active player may issue
type TurnStage int

const (
	// StageAwaitingCardTrade - the player holds five or more cards and must trade first
	StageAwaitingCardTrade TurnStage = iota

	// StageDeploying - reinforcements remain to be placed
	StageDeploying

	// StageAttackOrMove - all troops placed; attack, move or end the turn
	StageAttackOrMove
)

// ForcedTradeHandSize is the hand size at which a turn opens with a mandatory trade.
const ForcedTradeHandSize = 5

var stageNames = map[TurnStage]string{
	StageAwaitingCardTrade: "AwaitingCardTrade",
	StageDeploying:         "Deploying",
	StageAttackOrMove:      "AttackOrMove",
}

func (s TurnStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", s)
}

// AllowedTransitions lists the stages reachable within a single turn.
// A new turn always restarts from OpeningStage.
func (s TurnStage) AllowedTransitions() []TurnStage {
	switch s {
	case StageAwaitingCardTrade:
		return []TurnStage{StageDeploying}
	case StageDeploying:
		return []TurnStage{StageAttackOrMove}
	default:
		return []TurnStage{}
	}
}

func (s TurnStage) CanTransitionTo(target TurnStage) bool {
	for _, stage := range s.AllowedTransitions() {
		if stage == target {
			return true
		}
	}
	return false
}

// OpeningStage is the stage a main-game turn starts in for a hand of handSize cards.
func OpeningStage(handSize int) TurnStage {
	if handSize >= ForcedTradeHandSize {
		return StageAwaitingCardTrade
	}
	return StageDeploying
}

func (s TurnStage) MarshalText() ([]byte, error) {
	name, ok := stageNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown turn stage %d", int(s))
	}
	return []byte(name), nil
}

func (s *TurnStage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown turn stage %q", string(text))
}
