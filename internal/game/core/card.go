package core

import (
	"fmt"
	"math/rand"
)

// CardKind is the insignia printed on a card
type CardKind string

const (
	Infantry  CardKind = "Infantry"
	Cavalry   CardKind = "Cavalry"
	Artillery CardKind = "Artillery"
	Wild      CardKind = "Wild"
)

// WildCards is the number of wild cards shuffled into every deck.
const WildCards = 2

var cyclingKinds = [...]CardKind{Infantry, Cavalry, Artillery}

// Card is one card of the deck. Wild cards carry no territory.
type Card struct {
	Kind      CardKind `json:"kind"`
	Territory string   `json:"territory,omitempty"`
}

func (c Card) IsWild() bool {
	return c.Kind == Wild
}

func (c Card) String() string {
	if c.IsWild() {
		return string(Wild)
	}
	return fmt.Sprintf("%s (%s)", c.Kind, c.Territory)
}

// DeckSize is the number of cards in a deck built over numTerritories.
func DeckSize(numTerritories int) int {
	return numTerritories + WildCards
}

// NewDeck builds one card per territory plus the wild cards and shuffles it.
// Territories are shuffled before kinds are assigned, so which territory
// carries which insignia differs between games.
func NewDeck(territories []string, rng *rand.Rand) []Card {
	names := append([]string(nil), territories...)
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	deck := make([]Card, 0, DeckSize(len(names)))
	for i, name := range names {
		deck = append(deck, Card{Kind: cyclingKinds[i%len(cyclingKinds)], Territory: name})
	}
	for i := 0; i < WildCards; i++ {
		deck = append(deck, Card{Kind: Wild})
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}
