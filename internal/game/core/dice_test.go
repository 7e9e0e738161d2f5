package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareDice(t *testing.T) {
	tests := []struct {
		name        string
		attack      []int
		defend      []int
		wantAttLoss int
		wantDefLoss int
	}{
		{"attacker sweeps", []int{6, 5, 4}, []int{3, 1}, 0, 2},
		{"unsorted input", []int{4, 6, 5}, []int{1, 3}, 0, 2},
		{"ties go to defender", []int{3, 3}, []int{3, 3}, 2, 0},
		{"split", []int{6, 2}, []int{5, 4}, 1, 1},
		{"single defender die", []int{2, 1, 1}, []int{2}, 1, 0},
		{"single attacker die", []int{6}, []int{5, 5}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attLoss, defLoss := CompareDice(tt.attack, tt.defend)
			assert.Equal(t, tt.wantAttLoss, attLoss)
			assert.Equal(t, tt.wantDefLoss, defLoss)
		})
	}
}

func TestCompareDice_DoesNotReorderInput(t *testing.T) {
	attack := []int{1, 6, 3}
	CompareDice(attack, []int{2})
	assert.Equal(t, []int{1, 6, 3}, attack)
}

func TestDefenderDice(t *testing.T) {
	assert.Equal(t, 1, DefenderDice(1))
	assert.Equal(t, 2, DefenderDice(2))
	assert.Equal(t, 2, DefenderDice(30))
}

func TestRandomDice_Range(t *testing.T) {
	d := NewRandomDice(rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		rolls := d.Roll(3)
		require.Len(t, rolls, 3)
		for _, r := range rolls {
			assert.GreaterOrEqual(t, r, 1)
			assert.LessOrEqual(t, r, DieFaces)
		}
	}
}

func TestNewDeck(t *testing.T) {
	w := MustClassicWorld()
	deck := NewDeck(w.TerritoryNames(), rand.New(rand.NewSource(42)))

	require.Len(t, deck, 44)

	kinds := map[CardKind]int{}
	seen := map[string]bool{}
	for _, c := range deck {
		kinds[c.Kind]++
		if c.IsWild() {
			assert.Empty(t, c.Territory)
			continue
		}
		assert.False(t, seen[c.Territory], "territory %s has two cards", c.Territory)
		seen[c.Territory] = true
	}
	assert.Len(t, seen, 42)
	assert.Equal(t, 2, kinds[Wild])
	assert.Equal(t, 14, kinds[Infantry])
	assert.Equal(t, 14, kinds[Cavalry])
	assert.Equal(t, 14, kinds[Artillery])
}
