package game

import (
	"github.com/mitchelldurbincs/conquest/internal/game/rules"
)

// View is the public face of a game: everything any player may see. Hands
// and the deck order stay private.
type View struct {
	ID                   string                    `json:"id"`
	Phase                string                    `json:"phase"`
	TurnStage            string                    `json:"turn_stage"`
	ActivePlayer         string                    `json:"active_player,omitempty"`
	TurnCount            int                       `json:"turn_count"`
	InPregame            bool                      `json:"in_pregame"`
	UnclaimedTerritories int                       `json:"unclaimed_territories"`
	TradeCount           int                       `json:"trade_count"`
	NextTradeReward      int                       `json:"next_trade_reward"`
	DeckSize             int                       `json:"deck_size"`
	Players              []PlayerView              `json:"players"`
	Territories          map[string]TerritoryState `json:"territories"`
	Winner               string                    `json:"winner,omitempty"`
	Over                 bool                      `json:"over"`
}

type PlayerView struct {
	ID               string `json:"id"`
	TurnNumber       int    `json:"turn_number"`
	Colour           string `json:"colour"`
	Territories      int    `json:"territories"`
	Cards            int    `json:"cards"`
	DeployableTroops int    `json:"deployable_troops"`
	Eliminated       bool   `json:"eliminated"`
	Resigned         bool   `json:"resigned,omitempty"`
}

// View builds the public view of the game.
func (gs *GameState) View() *View {
	v := &View{
		ID:                   gs.ID,
		Phase:                gs.Phase().String(),
		TurnStage:            gs.TurnStage.String(),
		TurnCount:            gs.TurnCount,
		InPregame:            gs.InPregame,
		UnclaimedTerritories: gs.UnclaimedTerritories,
		TradeCount:           gs.TradeCount,
		NextTradeReward:      rules.TradeReward(gs.TradeCount),
		DeckSize:             len(gs.Deck),
		Players:              make([]PlayerView, 0, len(gs.TurnOrder)),
		Territories:          make(map[string]TerritoryState, len(gs.Territories)),
		Winner:               gs.Winner,
		Over:                 gs.Over,
	}
	if !gs.Over {
		v.ActivePlayer = gs.ActivePlayerID()
	}
	for _, p := range gs.OrderedPlayers() {
		v.Players = append(v.Players, PlayerView{
			ID:               p.ID,
			TurnNumber:       p.TurnNumber,
			Colour:           p.Colour,
			Territories:      len(p.Territories),
			Cards:            len(p.Hand),
			DeployableTroops: p.DeployableTroops,
			Eliminated:       p.Eliminated,
			Resigned:         p.Resigned,
		})
	}
	for name, t := range gs.Territories {
		v.Territories[name] = *t
	}
	return v
}
