package holdem

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"holdem-arcade/card"
)

// newRNG seeds the match generator. Seed 0 draws a seed from crypto/rand.
func newRNG(seed int64) (*rand.Rand, error) {
	if seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
		}
		seed = int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
		if seed == 0 {
			seed = 1
		}
	}
	return rand.New(rand.NewSource(seed)), nil
}

// randIntInclusive returns a uniform value in [min, max].
func randIntInclusive(rng *rand.Rand, min, max int64) int64 {
	if min >= max {
		return min
	}
	return min + rng.Int63n(max-min+1)
}

// weightedIndex picks an index with probability proportional to weights.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

// containsCard 工具：判断牌是否在切片里
func containsCard(cards []card.Card, c card.Card) bool {
	for _, cc := range cards {
		if cc == c {
			return true
		}
	}
	return false
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
