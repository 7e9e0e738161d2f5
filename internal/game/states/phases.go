package states

import "fmt"

// GamePhase is the lifecycle phase of a whole game
type GamePhase int

const (
	// PhasePregame - players claim territories and place starting troops one at a time
	PhasePregame GamePhase = iota

	// PhaseRunning - normal turns with reinforcements, trades, attacks and moves
	PhaseRunning

	// PhaseEnded - a winner has been declared; the game accepts no further commands
	PhaseEnded
)

func (p GamePhase) String() string {
	switch p {
	case PhasePregame:
		return "Pregame"
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhasePregame:
		return []GamePhase{PhaseRunning, PhaseEnded}
	case PhaseRunning:
		return []GamePhase{PhaseEnded}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// PhaseOf derives the phase from the flags stored in a game document.
func PhaseOf(inPregame, over bool) GamePhase {
	switch {
	case over:
		return PhaseEnded
	case inPregame:
		return PhasePregame
	default:
		return PhaseRunning
	}
}
