package holdem

import (
	"math/rand"
	"sort"

	"holdem-arcade/card"
)

// HandStrength scores hole+community cards in [0,1].
//
// 评分规则（粗略启发式，不区分牌型）:
//   - 没有牌: rng 随机 [0, 0.3)
//   - 有重复点数: min(1, 0.5 + (14 - 最大重复点数)/14)
//   - 否则: 最大点数/14 * 0.4
//
// The result does not depend on card order. rng is only consulted when
// there are no cards at all.
func HandStrength(hole, community []card.Card, rng *rand.Rand) float64 {
	ranks := make([]int, 0, len(hole)+len(community))
	for _, c := range hole {
		ranks = append(ranks, c.Rank())
	}
	for _, c := range community {
		ranks = append(ranks, c.Rank())
	}
	if len(ranks) == 0 {
		return rng.Float64() * 0.3
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	// ranks is sorted high to low, so the first adjacent duplicate is the
	// highest repeated rank.
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			s := 0.5 + float64(card.RankMax-ranks[i])/float64(card.RankMax)
			if s > 1 {
				s = 1
			}
			return s
		}
	}
	return float64(ranks[0]) / float64(card.RankMax) * 0.4
}
