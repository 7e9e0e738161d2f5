package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/rules"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
	"github.com/mitchelldurbincs/conquest/internal/testutil"
)

func TestGameState_EncodeDecode(t *testing.T) {
	e := newMainGame(t, nil, "alice", "bob", "carol")
	gs := e.State()
	takeCard(t, gs, gs.TurnOrder[0], core.Wild)
	gs.LastAttack = &AttackRecord{Target: "Siam", Attacker: "Indonesia", ArmySize: 2}
	gs.TurnStage = states.StageAttackOrMove

	data, err := gs.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"turn_stage":"AttackOrMove"`)

	decoded, err := DecodeState(data, e.World())
	require.NoError(t, err)
	assert.Equal(t, gs.TurnOrder, decoded.TurnOrder)
	assert.Equal(t, gs.LastAttack, decoded.LastAttack)
	assert.Equal(t, gs.Players[gs.TurnOrder[0]].Hand, decoded.Players[gs.TurnOrder[0]].Hand)
	assert.Equal(t, states.StageAttackOrMove, decoded.TurnStage)
	assert.True(t, gs.CreatedAt.Equal(decoded.CreatedAt))
}

func TestDecodeState_RejectsGarbage(t *testing.T) {
	_, err := DecodeState([]byte("{not json"), testutil.ClassicWorld(t))
	assert.Error(t, err)
}

func TestGameState_ValidateCatchesCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(gs *GameState)
	}{
		{"lost card", func(gs *GameState) { gs.Deck = gs.Deck[1:] }},
		{"duplicated card", func(gs *GameState) {
			var plain []int
			for i, c := range gs.Deck {
				if !c.IsWild() {
					plain = append(plain, i)
				}
			}
			gs.Deck[plain[0]] = gs.Deck[plain[1]]
		}},
		{"owner missing holding", func(gs *GameState) {
			p := gs.Players[gs.Territories["Siam"].Owner]
			p.removeTerritory("Siam")
		}},
		{"owned territory without troops", func(gs *GameState) { gs.Territories["Siam"].Troops = 0 }},
		{"active player eliminated", func(gs *GameState) {
			gs.Players[gs.TurnOrder[0]].Eliminated = true
			gs.EliminatedPlayers = append(gs.EliminatedPlayers, 1)
		}},
		{"elimination flag out of step", func(gs *GameState) { gs.Players[gs.TurnOrder[1]].Eliminated = true }},
		{"wrong turn number", func(gs *GameState) { gs.Players[gs.TurnOrder[1]].TurnNumber = 5 }},
		{"unclaimed count drift", func(gs *GameState) { gs.UnclaimedTerritories = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newMainGame(t, nil, "alice", "bob")
			gs := e.State()
			require.NoError(t, gs.Validate(e.World()))
			tt.corrupt(gs)
			assert.Error(t, gs.Validate(e.World()))
		})
	}
}

// playRandomly drives a game with random legal-looking commands and checks
// the document after every accepted one.
func playRandomly(t *testing.T, e *Engine, rng *rand.Rand, steps int) {
	t.Helper()
	gs := e.State()
	lmc := rules.NewLegalMoveCalculator(e.World())
	turnNumbers := make(map[string]int, len(gs.TurnOrder))
	for _, p := range gs.Players {
		turnNumbers[p.ID] = p.TurnNumber
	}

	for step := 0; step < steps && !gs.Over; step++ {
		p := gs.activePlayer()
		var err error
		switch gs.TurnStage {
		case states.StageAwaitingCardTrade:
			_, err = e.TradeCards(p.ID, nil)
			require.NoError(t, err, "a full hand always holds a set")
		case states.StageDeploying:
			if len(p.Hand) >= rules.SetSize && rng.Intn(2) == 0 {
				_, err = e.TradeCards(p.ID, nil)
			} else {
				target := p.Territories[rng.Intn(len(p.Territories))]
				_, err = e.Deploy(p.ID, p.DeployableTroops, target)
				require.NoError(t, err)
			}
		case states.StageAttackOrMove:
			attacks := lmc.Attacks(gs, p.ID)
			switch roll := rng.Intn(10); {
			case gs.LastAttack != nil && gs.Owner(gs.LastAttack.Target) == p.ID:
				_, err = e.MoveAfterConquest(p.ID, nil)
				require.NoError(t, err)
			case roll < 7 && len(attacks) > 0:
				b := attacks[rng.Intn(len(attacks))]
				_, err = e.Attack(p.ID, &AttackOrder{Target: b.To, Attacker: b.From})
				require.NoError(t, err)
			case roll == 7:
				if moves := lmc.Fortifications(gs, p.ID); len(moves) > 0 {
					b := moves[rng.Intn(len(moves))]
					_, err = e.Fortify(p.ID, gs.Troops(b.From)-1, b.From, b.To)
					require.NoError(t, err)
				}
			default:
				_, err = e.EndTurn(p.ID)
				require.NoError(t, err)
			}
		}
		if err != nil {
			require.True(t, core.IsRuleViolation(err), "unexpected error: %v", err)
			continue
		}
		require.NoError(t, gs.Validate(e.World()), "step %d", step)
	}

	for _, p := range gs.Players {
		assert.Equal(t, turnNumbers[p.ID], p.TurnNumber, "turn numbers never change")
	}
	assert.Equal(t, core.DeckSize(e.World().NumTerritories()), gs.CardCount())
}

func TestRandomPlay_PreservesInvariants(t *testing.T) {
	tests := []struct {
		name    string
		players []string
		seed    int64
	}{
		{"two players", []string{"a", "b"}, 1},
		{"four players", []string{"a", "b", "c", "d"}, 7},
		{"six players", []string{"a", "b", "c", "d", "e", "f"}, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := testutil.NewTestRNG(tt.seed)
			cfg := testConfig(t, core.NewRandomDice(rng))
			cfg.Rng = rng
			e, _, err := NewGame(cfg, tt.players, true)
			require.NoError(t, err)
			playRandomly(t, e, rng, 3000)
		})
	}
}

func TestRandomPlay_StandardPregame(t *testing.T) {
	rng := testutil.NewTestRNG(3)
	cfg := testConfig(t, core.NewRandomDice(rng))
	cfg.Rng = rng
	e, _, err := NewGame(cfg, []string{"a", "b", "c"}, false)
	require.NoError(t, err)
	gs := e.State()

	names := e.World().TerritoryNames()
	for gs.InPregame {
		p := gs.activePlayer()
		target := ""
		if gs.UnclaimedTerritories > 0 {
			for _, n := range names {
				if gs.Owner(n) == "" {
					target = n
					break
				}
			}
		} else {
			target = p.Territories[rng.Intn(len(p.Territories))]
		}
		_, err := e.Deploy(p.ID, 1, target)
		require.NoError(t, err)
		require.NoError(t, gs.Validate(e.World()))
	}

	assert.Zero(t, gs.UnclaimedTerritories)
	for _, p := range gs.Players {
		if p.ID != gs.ActivePlayerID() {
			assert.Zero(t, p.DeployableTroops)
		}
	}
	playRandomly(t, e, rng, 2000)
}
