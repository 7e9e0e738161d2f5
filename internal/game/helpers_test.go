package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
	"github.com/mitchelldurbincs/conquest/internal/testutil"
)

func testConfig(t *testing.T, dice core.DiceRoller) GameConfig {
	return GameConfig{
		GameID: "test-game",
		World:  testutil.ClassicWorld(t),
		Rng:    testutil.NewTestRNG(42),
		Dice:   dice,
		Logger: testutil.NopLogger(),
	}
}

// newMainGame starts an instant-fill game and deals the board round robin in
// turn order, three troops per territory. The first player is about to deploy.
func newMainGame(t *testing.T, dice core.DiceRoller, ids ...string) *Engine {
	t.Helper()
	e, _, err := NewGame(testConfig(t, dice), ids, true)
	require.NoError(t, err)

	gs := e.gs
	for i, name := range e.world.TerritoryNames() {
		setTerritory(gs, name, gs.TurnOrder[i%len(gs.TurnOrder)], 3)
	}
	p := gs.activePlayer()
	p.DeployableTroops = e.CalculateReinforcements(p.ID)
	gs.TurnStage = states.StageDeploying
	require.NoError(t, gs.Validate(e.world))
	return e
}

// setTerritory hands a territory to owner, keeping both sides of the
// ownership relation in step.
func setTerritory(gs *GameState, name, owner string, troops int) {
	t := gs.Territories[name]
	if t.Owner != "" {
		gs.Players[t.Owner].removeTerritory(name)
	}
	t.Owner = owner
	t.Troops = troops
	if owner != "" {
		p := gs.Players[owner]
		p.Territories = append(p.Territories, name)
	}
}

// giveAllExcept moves every territory owned by from, other than keep, to to.
func giveAllExcept(gs *GameState, from, to string, keep ...string) {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	for name, t := range gs.Territories {
		if t.Owner == from && !kept[name] {
			setTerritory(gs, name, to, 1)
		}
	}
}

// readyToAttack skips the active player's deployment.
func readyToAttack(e *Engine) string {
	p := e.gs.activePlayer()
	p.DeployableTroops = 0
	e.gs.TurnStage = states.StageAttackOrMove
	return p.ID
}

// opponent returns the first seated player other than id.
func opponent(gs *GameState, id string) string {
	for _, other := range gs.TurnOrder {
		if other != id {
			return other
		}
	}
	return ""
}

// takeCard moves the first deck card of kind into the player's hand.
func takeCard(t *testing.T, gs *GameState, playerID string, kind core.CardKind) core.Card {
	t.Helper()
	for i, c := range gs.Deck {
		if c.Kind == kind {
			gs.Deck = append(gs.Deck[:i], gs.Deck[i+1:]...)
			p := gs.Players[playerID]
			p.Hand = append(p.Hand, c)
			return c
		}
	}
	t.Fatalf("no %s card left in the deck", kind)
	return core.Card{}
}
