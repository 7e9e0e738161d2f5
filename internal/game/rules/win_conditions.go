package rules

import "github.com/rs/zerolog"

// WinConditionChecker handles elimination and victory detection
type WinConditionChecker struct {
	logger           zerolog.Logger
	totalTerritories int
}

// NewWinConditionChecker creates a checker for a board of totalTerritories
func NewWinConditionChecker(logger zerolog.Logger, totalTerritories int) *WinConditionChecker {
	return &WinConditionChecker{
		logger:           logger.With().Str("component", "WinConditionChecker").Logger(),
		totalTerritories: totalTerritories,
	}
}

// IsWorldConquered reports whether a player holding owned territories has won.
func (wc *WinConditionChecker) IsWorldConquered(owned int) bool {
	return owned >= wc.totalTerritories
}

// IsEliminated reports whether a player holding owned territories is out.
func (wc *WinConditionChecker) IsEliminated(owned int) bool {
	return owned == 0
}

// LastStanding returns the only player still in the game, if exactly one remains.
func (wc *WinConditionChecker) LastStanding(players []Player) (string, bool) {
	var alive []string
	for _, p := range players {
		if p.IsAlive() {
			alive = append(alive, p.GetID())
		}
	}

	wc.logger.Debug().Int("alive_player_count", len(alive)).Strs("alive_player_ids", alive).Msg("Checked remaining players")

	if len(alive) != 1 {
		return "", false
	}
	wc.logger.Info().Str("winner_player_id", alive[0]).Msg("Winner determined")
	return alive[0], true
}

// Player interface to avoid circular imports
type Player interface {
	GetID() string
	IsAlive() bool
}
