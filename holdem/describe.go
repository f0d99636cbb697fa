package holdem

import (
	"fmt"

	"github.com/paulhankin/poker"

	"holdem-arcade/card"
)

func toPokerCard(c card.Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit() {
	case card.Club:
		s = poker.Club
	case card.Diamond:
		s = poker.Diamond
	case card.Heart:
		s = poker.Heart
	default:
		s = poker.Spade
	}
	r := poker.Rank(c.Rank())
	if c.IsAce() {
		r = poker.Rank(1)
	}
	return poker.MakeCard(s, r)
}

// Describe names the best real poker hand in cards, e.g.
// "three of a kind, kings". It is a label only; winners are chosen by
// HandStrength.
func Describe(cards []card.Card) (string, error) {
	if len(cards) != 3 && len(cards) != 5 && len(cards) != 7 {
		return "", fmt.Errorf("describe needs 3, 5 or 7 cards, got %d", len(cards))
	}
	pcs := make([]poker.Card, 0, len(cards))
	for _, c := range cards {
		pc, err := toPokerCard(c)
		if err != nil {
			return "", fmt.Errorf("card %s: %w", c, err)
		}
		pcs = append(pcs, pc)
	}
	return poker.Describe(pcs)
}
