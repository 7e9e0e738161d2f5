package rules

import "github.com/mitchelldurbincs/conquest/internal/game/core"

// SetSize is the number of cards traded in at once.
const SetSize = 3

// BonusCardTroops are placed on the territory of the first traded card the player owns.
const BonusCardTroops = 2

var tradeRewards = [...]int{4, 6, 8, 10, 12, 15}

// TradeReward returns the troops awarded for a trade when tradeCount sets
// have already been traded in this game.
func TradeReward(tradeCount int) int {
	if tradeCount < len(tradeRewards) {
		return tradeRewards[tradeCount]
	}
	return (tradeCount - 2) * 5
}

// IsLegalSet reports whether three cards can be traded together: any set
// holding a wild, three of a kind, or one of each kind.
func IsLegalSet(cards []core.Card) bool {
	if len(cards) != SetSize {
		return false
	}
	kinds := make(map[core.CardKind]int, SetSize)
	for _, c := range cards {
		if c.IsWild() {
			return true
		}
		kinds[c.Kind]++
	}
	return len(kinds) == 1 || len(kinds) == SetSize
}

// ScoreSet ranks a candidate set for auto-selection. Sets earning the
// territory bonus come first, then sets that spare wild cards, then sets
// that use up cards the player cannot collect a bonus on.
func ScoreSet(cards []core.Card, owns func(territory string) bool) int {
	wilds, bonus, normal := 0, 0, 0
	for _, c := range cards {
		switch {
		case c.IsWild():
			wilds++
		case owns(c.Territory):
			bonus++
		default:
			normal++
		}
	}

	score := 0
	if bonus > 0 {
		score += 3
	}
	switch wilds {
	case 0:
		score += 2
	case 1:
		score++
	}
	if score == 5 {
		score += normal
	}
	return score
}

// BestSet completes a partial selection into the highest scoring legal set.
// selected holds zero-based hand indices chosen by the player; the result
// keeps them first, followed by the chosen completion in hand order. Ties
// keep the first candidate in combination order.
func BestSet(hand []core.Card, selected []int, owns func(territory string) bool) ([]int, bool) {
	need := SetSize - len(selected)
	if need < 0 {
		return nil, false
	}

	taken := make(map[int]bool, len(selected))
	for _, i := range selected {
		taken[i] = true
	}
	var remaining []int
	for i := range hand {
		if !taken[i] {
			remaining = append(remaining, i)
		}
	}

	var best []int
	bestScore := -1
	cards := make([]core.Card, 0, SetSize)

	combinations(len(remaining), need, func(combo []int) {
		candidate := append(append([]int(nil), selected...), pick(remaining, combo)...)
		cards = cards[:0]
		for _, i := range candidate {
			cards = append(cards, hand[i])
		}
		if !IsLegalSet(cards) {
			return
		}
		if score := ScoreSet(cards, owns); score > bestScore {
			best, bestScore = candidate, score
		}
	})

	return best, best != nil
}

func pick(from []int, positions []int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = from[p]
	}
	return out
}

// combinations calls fn with every k-subset of 0..n-1 in lexicographic order.
func combinations(n, k int, fn func([]int)) {
	if k < 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
