package rules

import "github.com/mitchelldurbincs/conquest/internal/game/core"

// MinReinforcements is the income floor for a player holding few territories.
const MinReinforcements = 3

// Reinforcements returns the troops a player receives at the start of a turn:
// one per three territories held (never less than three) plus the bonus of
// every continent held completely.
func Reinforcements(world *core.World, owned []string) int {
	troops := len(owned) / 3
	if troops < MinReinforcements {
		troops = MinReinforcements
	}

	held := make(map[string]bool, len(owned))
	for _, t := range owned {
		held[t] = true
	}
	for _, c := range world.Continents() {
		if holdsAll(held, c.Territories) {
			troops += c.Bonus
		}
	}
	return troops
}

func holdsAll(held map[string]bool, territories []string) bool {
	for _, t := range territories {
		if !held[t] {
			return false
		}
	}
	return true
}

// StartingTroops returns the troops each player places during the pregame.
func StartingTroops(numPlayers int) (int, bool) {
	if numPlayers < MinPlayers || numPlayers > MaxPlayers {
		return 0, false
	}
	return 40 - 5*(numPlayers-MinPlayers), true
}

const (
	MinPlayers = 2
	MaxPlayers = 6
)
