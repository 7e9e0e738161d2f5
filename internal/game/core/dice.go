package core

import (
	"math/rand"
	"sort"
)

// MaxAttackDice and MaxDefendDice cap the dice rolled per side.
const (
	MaxAttackDice = 3
	MaxDefendDice = 2
	DieFaces      = 6
)

// DiceRoller rolls n six-sided dice.
type DiceRoller interface {
	Roll(n int) []int
}

// RandomDice rolls dice from a seeded source
type RandomDice struct {
	rng *rand.Rand
}

func NewRandomDice(rng *rand.Rand) *RandomDice {
	return &RandomDice{rng: rng}
}

func (d *RandomDice) Roll(n int) []int {
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = d.rng.Intn(DieFaces) + 1
	}
	return rolls
}

// DefenderDice is the number of dice a territory holding troops defends with.
func DefenderDice(troops int) int {
	if troops > 1 {
		return MaxDefendDice
	}
	return 1
}

// CompareDice sorts both rolls in descending order and compares them pairwise
// over the shorter roll. Ties go to the defender.
func CompareDice(attack, defend []int) (attackerLosses, defenderLosses int) {
	a := SortedDesc(attack)
	d := SortedDesc(defend)

	n := len(a)
	if len(d) < n {
		n = len(d)
	}
	for i := 0; i < n; i++ {
		if a[i] > d[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return attackerLosses, defenderLosses
}

// SortedDesc returns a copy of rolls ordered high to low.
func SortedDesc(rolls []int) []int {
	out := append([]int(nil), rolls...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
