package holdem

import (
	"fmt"

	"holdem-arcade/card"
)

const (
	MinOpponents = 1
	MaxOpponents = 5

	DefaultStartingStack int64 = 1000
	DefaultOpeningBet    int64 = 10
	DefaultLogCapacity         = 10
)

type Config struct {
	// Table
	Opponents     int
	Difficulty    Tier
	OpponentNames []string // optional, one per opponent

	// Chips
	StartingStack int64 // 0 => DefaultStartingStack
	OpeningBet    int64 // preflop table bet, nothing posted; 0 => DefaultOpeningBet

	// Event log ring size (0 => DefaultLogCapacity)
	LogCapacity int

	// RNG seed (0 => crypto/rand)
	Seed int64

	// Optional fixed deck order for every hand (must be 52 distinct cards).
	DeckOverride []card.Card
}

func (c Config) withDefaults() Config {
	if c.StartingStack == 0 {
		c.StartingStack = DefaultStartingStack
	}
	if c.OpeningBet == 0 {
		c.OpeningBet = DefaultOpeningBet
	}
	if c.LogCapacity == 0 {
		c.LogCapacity = DefaultLogCapacity
	}
	return c
}

func (c Config) validate() error {
	if c.Opponents < MinOpponents || c.Opponents > MaxOpponents {
		return fmt.Errorf("Opponents must be in [%d,%d], got %d", MinOpponents, MaxOpponents, c.Opponents)
	}
	// 2 hole cards per seat + 5 community cards must fit in one deck
	if seats := c.Opponents + 1; 2*seats+5 > len(card.Deck52) {
		return fmt.Errorf("too many seats for one deck: %d", seats)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty: %d", c.Difficulty)
	}
	if c.StartingStack <= 0 {
		return fmt.Errorf("StartingStack must be > 0")
	}
	if c.OpeningBet < 0 {
		return fmt.Errorf("OpeningBet must be >= 0")
	}
	if c.LogCapacity < 0 {
		return fmt.Errorf("LogCapacity must be >= 0")
	}
	if len(c.OpponentNames) > 0 && len(c.OpponentNames) != c.Opponents {
		return fmt.Errorf("OpponentNames has %d names for %d opponents", len(c.OpponentNames), c.Opponents)
	}
	if c.DeckOverride != nil {
		if _, err := NewDeckFrom(c.DeckOverride); err != nil {
			return fmt.Errorf("DeckOverride: %w", err)
		}
	}
	return nil
}
