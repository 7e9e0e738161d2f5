package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/testutil"
)

func TestPlay_KeepsStateConsistent(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		rng := testutil.NewTestRNG(seed)
		e, _, err := game.NewGame(game.GameConfig{
			GameID: "demo",
			World:  testutil.ClassicWorld(t),
			Rng:    rng,
			Logger: testutil.NopLogger(),
		}, []string{"bot-1", "bot-2", "bot-3"}, true)
		require.NoError(t, err)

		s := play(e, rng, 150)
		gs := e.State()
		assert.Positive(t, s.Commands)
		assert.True(t, gs.Over || gs.TurnCount > 150, "seed %d stopped early at turn %d", seed, gs.TurnCount)
		assert.NoError(t, gs.Validate(e.World()), "seed %d", seed)
		if gs.Over {
			assert.NotEmpty(t, gs.Winner)
		}
	}
}
