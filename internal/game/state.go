package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// Colours are handed out in turn order.
var Colours = []string{"red", "blue", "yellow", "green", "brown", "black"}

// TerritoryState is the dynamic half of a territory. Owner is empty while unclaimed.
type TerritoryState struct {
	Owner  string `json:"owner,omitempty"`
	Troops int    `json:"troops"`
}

// PlayerState is one seat in a game. Seats are never removed; eliminated and
// resigned players keep their turn number.
type PlayerState struct {
	ID               string      `json:"id"`
	TurnNumber       int         `json:"turn_number"`
	Colour           string      `json:"colour"`
	Territories      []string    `json:"territories"`
	Hand             []core.Card `json:"hand"`
	DeployableTroops int         `json:"deployable_troops"`
	Eliminated       bool        `json:"eliminated"`
	Resigned         bool        `json:"resigned,omitempty"`
}

func (p *PlayerState) GetID() string { return p.ID }
func (p *PlayerState) IsAlive() bool { return !p.Eliminated }

func (p *PlayerState) owns(territory string) bool {
	for _, t := range p.Territories {
		if t == territory {
			return true
		}
	}
	return false
}

func (p *PlayerState) removeTerritory(territory string) {
	for i, t := range p.Territories {
		if t == territory {
			p.Territories = append(p.Territories[:i], p.Territories[i+1:]...)
			return
		}
	}
}

// AttackRecord remembers the last attack of the turn. While its target and
// attacker share an owner it also marks an open post-conquest move.
type AttackRecord struct {
	Target   string `json:"target"`
	Attacker string `json:"attacker"`
	ArmySize int    `json:"army_size"`
}

// GameState is the complete document of one game.
type GameState struct {
	ID                   string                     `json:"id"`
	Players              map[string]*PlayerState    `json:"players"`
	TurnOrder            []string                   `json:"turn_order"`
	Territories          map[string]*TerritoryState `json:"territories"`
	Deck                 []core.Card                `json:"deck"`
	Discard              []core.Card                `json:"discard"`
	ActivePlayer         int                        `json:"active_player"`
	EliminatedPlayers    []int                      `json:"eliminated_players"`
	TurnStage            states.TurnStage           `json:"turn_stage"`
	InPregame            bool                       `json:"in_pregame"`
	UnclaimedTerritories int                        `json:"unclaimed_territories"`
	LastAttack           *AttackRecord              `json:"last_attack,omitempty"`
	CardClaimed          bool                       `json:"card_claimed"`
	TradeCount           int                        `json:"trade_count"`
	TurnCount            int                        `json:"turn_count"`
	Winner               string                     `json:"winner,omitempty"`
	Over                 bool                       `json:"over"`
	CreatedAt            time.Time                  `json:"created_at"`
	UpdatedAt            time.Time                  `json:"updated_at"`
}

// Owner implements rules.Board.
func (gs *GameState) Owner(territory string) string {
	if t, ok := gs.Territories[territory]; ok {
		return t.Owner
	}
	return ""
}

// Troops implements rules.Board.
func (gs *GameState) Troops(territory string) int {
	if t, ok := gs.Territories[territory]; ok {
		return t.Troops
	}
	return 0
}

// ActivePlayerID returns the id of the player whose turn it is.
func (gs *GameState) ActivePlayerID() string {
	if gs.ActivePlayer < 1 || gs.ActivePlayer > len(gs.TurnOrder) {
		return ""
	}
	return gs.TurnOrder[gs.ActivePlayer-1]
}

func (gs *GameState) activePlayer() *PlayerState {
	return gs.Players[gs.ActivePlayerID()]
}

func (gs *GameState) isTurnEliminated(turnNumber int) bool {
	for _, n := range gs.EliminatedPlayers {
		if n == turnNumber {
			return true
		}
	}
	return false
}

// Phase derives the game lifecycle phase.
func (gs *GameState) Phase() states.GamePhase {
	return states.PhaseOf(gs.InPregame, gs.Over)
}

// OrderedPlayers returns players in turn order.
func (gs *GameState) OrderedPlayers() []*PlayerState {
	out := make([]*PlayerState, 0, len(gs.TurnOrder))
	for _, id := range gs.TurnOrder {
		out = append(out, gs.Players[id])
	}
	return out
}

// CardCount is the number of cards across deck, discard and every hand.
func (gs *GameState) CardCount() int {
	n := len(gs.Deck) + len(gs.Discard)
	for _, p := range gs.Players {
		n += len(p.Hand)
	}
	return n
}

// Encode serialises the document for a game store.
func (gs *GameState) Encode() ([]byte, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("encoding game %s: %w", gs.ID, err)
	}
	return data, nil
}

// DecodeState parses a stored document and checks it against the world.
func DecodeState(data []byte, world *core.World) (*GameState, error) {
	var gs GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("decoding game document: %w", err)
	}
	if err := gs.Validate(world); err != nil {
		return nil, fmt.Errorf("game %s: %w", gs.ID, err)
	}
	return &gs, nil
}

// Validate checks the structural invariants of the document.
func (gs *GameState) Validate(world *core.World) error {
	n := len(gs.TurnOrder)
	if n == 0 || len(gs.Players) != n {
		return fmt.Errorf("turn order lists %d players but %d are seated", n, len(gs.Players))
	}
	for i, id := range gs.TurnOrder {
		p, ok := gs.Players[id]
		if !ok {
			return fmt.Errorf("turn order names unknown player %q", id)
		}
		if p.TurnNumber != i+1 {
			return fmt.Errorf("player %s has turn number %d, expected %d", id, p.TurnNumber, i+1)
		}
		if p.Eliminated != gs.isTurnEliminated(p.TurnNumber) {
			return fmt.Errorf("player %s elimination flag disagrees with eliminated players", id)
		}
		if p.Eliminated && len(p.Hand) > 0 {
			return fmt.Errorf("eliminated player %s still holds cards", id)
		}
		if p.DeployableTroops < 0 {
			return fmt.Errorf("player %s has negative deployable troops", id)
		}
	}

	if len(gs.Territories) != world.NumTerritories() {
		return fmt.Errorf("document has %d territories, board has %d", len(gs.Territories), world.NumTerritories())
	}
	owned := make(map[string]int)
	unclaimed := 0
	for name, t := range gs.Territories {
		if !world.HasTerritory(name) {
			return fmt.Errorf("unknown territory %q", name)
		}
		switch {
		case t.Owner == "" && t.Troops != 0:
			return fmt.Errorf("unclaimed territory %s holds %d troops", name, t.Troops)
		case t.Owner != "" && t.Troops < 1:
			return fmt.Errorf("territory %s is owned but holds %d troops", name, t.Troops)
		case t.Owner == "":
			unclaimed++
			continue
		}
		p, ok := gs.Players[t.Owner]
		if !ok {
			return fmt.Errorf("territory %s owned by unknown player %q", name, t.Owner)
		}
		if !p.owns(name) {
			return fmt.Errorf("territory %s owned by %s but missing from their holdings", name, t.Owner)
		}
		owned[t.Owner]++
	}
	for id, p := range gs.Players {
		if len(p.Territories) != owned[id] {
			return fmt.Errorf("player %s lists %d territories but owns %d", id, len(p.Territories), owned[id])
		}
	}
	if unclaimed != gs.UnclaimedTerritories {
		return fmt.Errorf("%d territories unclaimed but document records %d", unclaimed, gs.UnclaimedTerritories)
	}

	if err := gs.validateCards(world); err != nil {
		return err
	}

	if !gs.Over {
		if gs.ActivePlayer < 1 || gs.ActivePlayer > n {
			return fmt.Errorf("active player %d out of range", gs.ActivePlayer)
		}
		if gs.isTurnEliminated(gs.ActivePlayer) {
			return fmt.Errorf("active player %d is eliminated", gs.ActivePlayer)
		}
	}
	return nil
}

func (gs *GameState) validateCards(world *core.World) error {
	want := core.DeckSize(world.NumTerritories())
	if got := gs.CardCount(); got != want {
		return fmt.Errorf("%d cards in play, expected %d", got, want)
	}

	seen := make(map[string]bool, want)
	wilds := 0
	check := func(c core.Card) error {
		if c.IsWild() {
			wilds++
			return nil
		}
		if !world.HasTerritory(c.Territory) {
			return fmt.Errorf("card for unknown territory %q", c.Territory)
		}
		if seen[c.Territory] {
			return fmt.Errorf("card for %s appears twice", c.Territory)
		}
		seen[c.Territory] = true
		return nil
	}
	for _, pile := range [][]core.Card{gs.Deck, gs.Discard} {
		for _, c := range pile {
			if err := check(c); err != nil {
				return err
			}
		}
	}
	for _, p := range gs.Players {
		for _, c := range p.Hand {
			if err := check(c); err != nil {
				return err
			}
		}
	}
	if wilds != core.WildCards {
		return fmt.Errorf("%d wild cards in play, expected %d", wilds, core.WildCards)
	}
	return nil
}
