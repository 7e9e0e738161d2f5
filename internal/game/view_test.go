package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
)

func TestView_HidesCards(t *testing.T) {
	e := newMainGame(t, nil, "alice", "bob")
	gs := e.State()
	active := gs.ActivePlayerID()
	takeCard(t, gs, active, core.Infantry)
	takeCard(t, gs, active, core.Wild)
	gs.TradeCount = 2

	v := gs.View()
	assert.Equal(t, active, v.ActivePlayer)
	assert.Equal(t, "Running", v.Phase)
	assert.Equal(t, "Deploying", v.TurnStage)
	assert.Equal(t, 8, v.NextTradeReward)
	assert.Equal(t, len(gs.Deck), v.DeckSize)
	require.Len(t, v.Players, 2)
	assert.Equal(t, active, v.Players[0].ID)
	assert.Equal(t, 2, v.Players[0].Cards)
	assert.Len(t, v.Territories, 42)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Infantry")
	assert.NotContains(t, string(data), `"hand"`)
}

func TestView_FinishedGameHasNoActivePlayer(t *testing.T) {
	e := newMainGame(t, nil, "alice", "bob")
	_, err := e.Resign("bob")
	require.NoError(t, err)

	v := e.State().View()
	assert.True(t, v.Over)
	assert.Equal(t, "alice", v.Winner)
	assert.Empty(t, v.ActivePlayer)
}
