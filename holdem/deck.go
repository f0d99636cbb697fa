package holdem

import (
	"fmt"
	"math/rand"

	"holdem-arcade/card"
)

// Deck is consumed from the top, one card at a time.
type Deck struct {
	stock card.CardList
}

// NewShuffledDeck returns all 52 cards in a random order.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	cards := make([]card.Card, len(card.Deck52))
	copy(cards, card.Deck52)
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	d := &Deck{}
	d.stock.Init(cards)
	return d
}

// NewDeckFrom returns a deck that deals cards in the given order.
func NewDeckFrom(cards []card.Card) (*Deck, error) {
	if len(cards) != len(card.Deck52) {
		return nil, fmt.Errorf("deck needs %d cards, got %d", len(card.Deck52), len(cards))
	}
	seen := make(map[card.Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card 0x%02x", byte(c))
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
	}
	d := &Deck{}
	d.stock.Init(cards)
	return d, nil
}

// StackedDeck puts top on top of the deck and fills the rest in suit-major
// order. Handy for fixing the hole and board cards of a hand.
func StackedDeck(top ...card.Card) ([]card.Card, error) {
	out := make([]card.Card, 0, len(card.Deck52))
	for _, c := range top {
		if containsCard(out, c) {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		out = append(out, c)
	}
	for _, c := range card.Deck52 {
		if !containsCard(out, c) {
			out = append(out, c)
		}
	}
	if len(out) != len(card.Deck52) {
		return nil, fmt.Errorf("invalid card in stacked deck")
	}
	return out, nil
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (card.Card, error) {
	if d.stock.Count() == 0 {
		return card.CardInvalid, ErrDeckExhausted
	}
	return d.stock.PopCard(), nil
}

func (d *Deck) Remaining() int { return d.stock.Count() }
