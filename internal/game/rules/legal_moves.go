package rules

import "github.com/mitchelldurbincs/conquest/internal/game/core"

// Board exposes the dynamic territory state the calculator needs
type Board interface {
	Owner(territory string) string
	Troops(territory string) int
}

// Border is an ordered pair of adjacent territories
type Border struct {
	From string
	To   string
}

// LegalMoveCalculator computes legal attacks and fortifications for players
type LegalMoveCalculator struct {
	world *core.World
}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator(world *core.World) *LegalMoveCalculator {
	return &LegalMoveCalculator{world: world}
}

// Attacks lists every (attacker, target) pair the player may attack across.
// A territory needs at least two troops to attack.
func (lmc *LegalMoveCalculator) Attacks(board Board, playerID string) []Border {
	return lmc.borders(board, playerID, func(neighbourOwner string) bool {
		return neighbourOwner != playerID && neighbourOwner != ""
	})
}

// Fortifications lists every (source, destination) pair the player may move across.
func (lmc *LegalMoveCalculator) Fortifications(board Board, playerID string) []Border {
	return lmc.borders(board, playerID, func(neighbourOwner string) bool {
		return neighbourOwner == playerID
	})
}

func (lmc *LegalMoveCalculator) borders(board Board, playerID string, accept func(string) bool) []Border {
	var out []Border
	for _, from := range lmc.world.TerritoryNames() {
		if board.Owner(from) != playerID || board.Troops(from) <= 1 {
			continue
		}
		for _, to := range lmc.world.Neighbours(from) {
			if accept(board.Owner(to)) {
				out = append(out, Border{From: from, To: to})
			}
		}
	}
	return out
}
