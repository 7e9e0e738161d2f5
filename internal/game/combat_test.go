package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
	"github.com/mitchelldurbincs/conquest/internal/testutil"
)

func attackOrder(target, attacker string, army int) *AttackOrder {
	return &AttackOrder{Target: target, Attacker: attacker, ArmySize: testutil.IntPtr(army)}
}

func countNotices(res *Result, substr string) int {
	n := 0
	for _, msg := range res.Notices {
		if strings.Contains(msg, substr) {
			n++
		}
	}
	return n
}

func eventTypes(res *Result) []string {
	out := make([]string, len(res.Events))
	for i, evt := range res.Events {
		out[i] = evt.Type()
	}
	return out
}

func TestAttack_IndonesiaTakesSiam(t *testing.T) {
	dice := testutil.NewScriptedDice(6, 5, 4, 3, 1)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	q := opponent(gs, p)
	setTerritory(gs, "Indonesia", p, 5)
	setTerritory(gs, "Siam", q, 2)

	res, err := e.Attack(p, attackOrder("Siam", "Indonesia", 3))
	require.NoError(t, err)
	assert.Zero(t, dice.Remaining())

	c := res.Combat
	assert.Equal(t, []int{6, 5, 4}, c.AttackerDice)
	assert.Equal(t, []int{3, 1}, c.DefenderDice)
	assert.Zero(t, c.AttackerLosses)
	assert.Equal(t, 2, c.DefenderLosses)
	assert.True(t, c.Conquered)
	assert.False(t, c.Clamped)
	assert.Equal(t, q, c.Defender)

	assert.Equal(t, p, gs.Territories["Siam"].Owner)
	assert.Equal(t, 3, gs.Territories["Siam"].Troops, "armySize minus attacker losses move in")
	assert.Equal(t, 2, gs.Territories["Indonesia"].Troops)
	assert.Equal(t, 1, c.PendingMove, "maxMove 4 minus minMove 3")
	require.NotNil(t, gs.LastAttack)
	assert.Equal(t, AttackRecord{Target: "Siam", Attacker: "Indonesia", ArmySize: 3}, *gs.LastAttack)

	assert.True(t, c.CardDrawn)
	assert.True(t, gs.CardClaimed)
	assert.Len(t, gs.Players[p].Hand, 1)
	assert.Len(t, gs.Deck, 43)
	assert.Equal(t, []string{events.TypeCombatResolved, events.TypeTerritoryConquered, events.TypeCardDrawn},
		eventTypes(res))
	require.NoError(t, gs.Validate(e.World()))

	res, err = e.MoveAfterConquest(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Move.Count)
	assert.Equal(t, 4, gs.Territories["Siam"].Troops)
	assert.Equal(t, 1, gs.Territories["Indonesia"].Troops)
	assert.Nil(t, gs.LastAttack)
}

func TestAttack_ReportsDiceHighToLow(t *testing.T) {
	dice := testutil.NewScriptedDice(2, 6, 1, 3, 5)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	q := opponent(gs, p)
	setTerritory(gs, "Indonesia", p, 8)
	setTerritory(gs, "Siam", q, 5)

	res, err := e.Attack(p, attackOrder("Siam", "Indonesia", 3))
	require.NoError(t, err)

	c := res.Combat
	assert.Equal(t, []int{6, 2, 1}, c.AttackerDice)
	assert.Equal(t, []int{5, 3}, c.DefenderDice)
	assert.Equal(t, 1, c.DefenderLosses, "6 beats 5")
	assert.Equal(t, 1, c.AttackerLosses, "2 loses to 3")
	assert.Equal(t, 7, gs.Territories["Indonesia"].Troops)
	assert.Equal(t, 4, gs.Territories["Siam"].Troops)
}

func TestAttack_ClampsArmySize(t *testing.T) {
	tests := []struct {
		name      string
		troops    int
		requested int
		want      int
		clamped   bool
	}{
		{"dice cap", 4, 5, 3, true},
		{"dice cap then garrison", 3, 5, 2, true},
		{"garrison only", 3, 3, 2, true},
		{"within limits", 5, 2, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dice := testutil.NewScriptedDice()
			for i := 0; i < tt.want; i++ {
				dice.Queue(1)
			}
			dice.Queue(6, 6)

			e := newMainGame(t, dice, "alice", "bob")
			gs := e.State()
			p := readyToAttack(e)
			setTerritory(gs, "Indonesia", p, tt.troops)
			setTerritory(gs, "Siam", opponent(gs, p), 3)

			res, err := e.Attack(p, attackOrder("Siam", "Indonesia", tt.requested))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Combat.ArmySize)
			assert.Equal(t, tt.clamped, res.Combat.Clamped)
			if tt.clamped {
				assert.Equal(t, 1, countNotices(res, "reducing"), "clamping is announced exactly once")
			} else {
				assert.Zero(t, countNotices(res, "reducing"))
			}
			assert.Len(t, res.Combat.AttackerDice, tt.want)
		})
	}
}

func TestAttack_DefaultsToThreeDice(t *testing.T) {
	dice := testutil.NewScriptedDice(2, 2, 2, 5, 5)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	setTerritory(gs, "Indonesia", p, 10)
	setTerritory(gs, "Siam", opponent(gs, p), 4)

	res, err := e.Attack(p, &AttackOrder{Target: "Siam", Attacker: "Indonesia"})
	require.NoError(t, err)
	assert.Equal(t, DefaultArmySize, res.Combat.ArmySize)
	assert.Equal(t, 8, gs.Territories["Indonesia"].Troops)
	assert.Equal(t, 4, gs.Territories["Siam"].Troops)
}

func TestAttack_TiesFavourDefender(t *testing.T) {
	dice := testutil.NewScriptedDice(4, 4, 2)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	setTerritory(gs, "Indonesia", p, 5)
	setTerritory(gs, "Siam", opponent(gs, p), 3)

	res, err := e.Attack(p, attackOrder("Siam", "Indonesia", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Combat.AttackerLosses)
	assert.Zero(t, res.Combat.DefenderLosses)
	assert.Equal(t, 4, gs.Territories["Indonesia"].Troops)
	assert.Equal(t, 3, gs.Territories["Siam"].Troops)
}

func TestAttack_ExhaustedAttacker(t *testing.T) {
	dice := testutil.NewScriptedDice(1, 6, 6)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	setTerritory(gs, "Indonesia", p, 2)
	setTerritory(gs, "Siam", opponent(gs, p), 3)

	res, err := e.Attack(p, attackOrder("Siam", "Indonesia", 1))
	require.NoError(t, err)
	assert.True(t, res.Combat.Exhausted)
	assert.Equal(t, 1, gs.Territories["Indonesia"].Troops)

	_, err = e.Attack(p, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientArmy)
}

func TestAttack_RepeatsLastAttack(t *testing.T) {
	dice := testutil.NewScriptedDice(1, 1, 6, 6, 6, 6, 1, 1)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	setTerritory(gs, "Indonesia", p, 10)
	setTerritory(gs, "Siam", opponent(gs, p), 5)

	_, err := e.Attack(p, nil)
	assert.ErrorIs(t, err, core.ErrNoPendingAttack)

	_, err = e.Attack(p, attackOrder("Siam", "Indonesia", 2))
	require.NoError(t, err)
	assert.Equal(t, 8, gs.Territories["Indonesia"].Troops)

	res, err := e.Attack(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Combat.ArmySize)
	assert.Equal(t, "Siam", res.Combat.Target)
	assert.Equal(t, 3, gs.Territories["Siam"].Troops)
	assert.Zero(t, dice.Remaining())
}

func TestAttack_Validation(t *testing.T) {
	e := newMainGame(t, testutil.NewScriptedDice(), "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	q := opponent(gs, p)
	setTerritory(gs, "Indonesia", p, 5)
	setTerritory(gs, "New Guinea", p, 3)
	setTerritory(gs, "Alaska", p, 1)
	setTerritory(gs, "Siam", q, 2)
	setTerritory(gs, "Kamchatka", q, 3)

	tests := []struct {
		name  string
		order *AttackOrder
		want  error
	}{
		{"unknown target", attackOrder("Atlantis", "Indonesia", 3), core.ErrUnknownTerritory},
		{"unknown attacker", attackOrder("Siam", "Lemuria", 3), core.ErrUnknownTerritory},
		{"attacker not owned", attackOrder("Indonesia", "Siam", 3), core.ErrNotOwner},
		{"not adjacent", attackOrder("Kamchatka", "Indonesia", 3), core.ErrNotAdjacent},
		{"own territory", attackOrder("New Guinea", "Indonesia", 3), core.ErrSelfAttack},
		{"single troop", attackOrder("Kamchatka", "Alaska", 3), core.ErrInsufficientArmy},
		{"zero army", attackOrder("Siam", "Indonesia", 0), core.ErrInvalidTroopCount},
		{"repeat with nothing to repeat", nil, core.ErrNoPendingAttack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Attack(p, tt.order)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := e.Attack(q, attackOrder("Indonesia", "Siam", 1))
	assert.ErrorIs(t, err, core.ErrNotYourTurn)

	gs.TurnStage = states.StageDeploying
	_, err = e.Attack(p, attackOrder("Siam", "Indonesia", 3))
	assert.ErrorIs(t, err, core.ErrWrongPhase)

	assert.Equal(t, 5, gs.Territories["Indonesia"].Troops)
	assert.Equal(t, 2, gs.Territories["Siam"].Troops)
}

func TestAttack_OneCardPerTurn(t *testing.T) {
	dice := testutil.NewScriptedDice(6, 5, 4, 1, 6, 5, 1)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	q := opponent(gs, p)
	setTerritory(gs, "Indonesia", p, 5)
	setTerritory(gs, "Siam", q, 1)
	setTerritory(gs, "China", q, 1)

	first, err := e.Attack(p, attackOrder("Siam", "Indonesia", 3))
	require.NoError(t, err)
	assert.True(t, first.Combat.CardDrawn)
	assert.Equal(t, 1, first.Combat.PendingMove)

	second, err := e.Attack(p, &AttackOrder{Target: "China", Attacker: "Siam"})
	require.NoError(t, err)
	assert.True(t, second.Combat.Conquered)
	assert.Equal(t, 2, second.Combat.ArmySize)
	assert.False(t, second.Combat.CardDrawn)
	assert.Zero(t, second.Combat.PendingMove)
	assert.Nil(t, gs.LastAttack, "nothing left to move closes the window")
	assert.Len(t, gs.Players[p].Hand, 1)

	_, err = e.MoveAfterConquest(p, nil)
	assert.ErrorIs(t, err, core.ErrNoPendingAttack)
	require.NoError(t, gs.Validate(e.World()))
}

func TestAttack_EliminatesDefender(t *testing.T) {
	dice := testutil.NewScriptedDice(6, 6, 6, 1)
	e := newMainGame(t, dice, "alice", "bob", "carol")
	gs := e.State()
	p := readyToAttack(e)
	q, r := gs.TurnOrder[1], gs.TurnOrder[2]
	giveAllExcept(gs, q, r, "Siam")
	setTerritory(gs, "Indonesia", p, 4)
	setTerritory(gs, "Siam", q, 1)
	takeCard(t, gs, q, core.Artillery)
	discarded := len(gs.Discard)

	res, err := e.Attack(p, attackOrder("Siam", "Indonesia", 3))
	require.NoError(t, err)

	defender := gs.Players[q]
	assert.Equal(t, []string{q}, res.Eliminated)
	assert.True(t, defender.Eliminated)
	assert.False(t, defender.Resigned)
	assert.Empty(t, defender.Hand)
	assert.Len(t, gs.Discard, discarded+1)
	assert.Contains(t, gs.EliminatedPlayers, defender.TurnNumber)
	assert.False(t, res.GameOver)
	assert.Contains(t, eventTypes(res), events.TypePlayerEliminated)
	require.NoError(t, gs.Validate(e.World()))

	readyToAttack(e)
	_, err = e.EndTurn(p)
	require.NoError(t, err)
	assert.Equal(t, r, gs.ActivePlayerID(), "eliminated seats are skipped")

	_, err = e.Deploy(q, 1, "Siam")
	assert.ErrorIs(t, err, core.ErrNotInGame)
}

func TestAttack_WorldConquestEndsGame(t *testing.T) {
	dice := testutil.NewScriptedDice(6, 5, 4, 1)
	e := newMainGame(t, dice, "alice", "bob")
	gs := e.State()
	p := readyToAttack(e)
	q := opponent(gs, p)
	giveAllExcept(gs, q, p, "Siam")
	setTerritory(gs, "Indonesia", p, 5)
	setTerritory(gs, "Siam", q, 1)

	res, err := e.Attack(p, attackOrder("Siam", "Indonesia", 3))
	require.NoError(t, err)

	assert.True(t, res.GameOver)
	assert.Equal(t, p, res.Winner)
	assert.Equal(t, []string{q}, res.Eliminated)
	assert.False(t, res.Combat.CardDrawn, "victory skips the conquest card")
	assert.True(t, gs.Over)
	assert.Equal(t, p, gs.Winner)
	assert.Nil(t, gs.LastAttack)
	assert.Len(t, gs.Players[p].Territories, 42)
	assert.Equal(t, []string{
		events.TypeCombatResolved,
		events.TypeTerritoryConquered,
		events.TypePlayerEliminated,
		events.TypePlayerWon,
		events.TypeGameEnded,
	}, eventTypes(res))
	require.NoError(t, gs.Validate(e.World()))

	_, err = e.Attack(p, nil)
	assert.ErrorIs(t, err, core.ErrGameOver)
	_, err = e.MoveAfterConquest(p, nil)
	assert.ErrorIs(t, err, core.ErrGameOver)
	_, err = e.Fortify(p, 1, "Siam", "Indonesia")
	assert.ErrorIs(t, err, core.ErrGameOver)
	_, err = e.TradeCards(p, nil)
	assert.ErrorIs(t, err, core.ErrGameOver)
	_, err = e.EndTurn(p)
	assert.ErrorIs(t, err, core.ErrGameOver)
	_, err = e.Resign(q)
	assert.ErrorIs(t, err, core.ErrGameOver)
}
