package holdem

import (
	"fmt"
	"math/rand"
)

// View is what an automated player sees when it is asked to act.
type View struct {
	Strength       float64
	Pot            int64
	TableBet       int64
	OwnBet         int64
	Stack          int64
	CommunityCount int
}

// PotOdds is TableBet/(Pot+TableBet), or 0 when both are 0.
func (v View) PotOdds() float64 {
	if v.Pot+v.TableBet <= 0 {
		return 0
	}
	return float64(v.TableBet) / float64(v.Pot+v.TableBet)
}

// Early reports whether the flop has not been dealt yet.
func (v View) Early() bool { return v.CommunityCount < 3 }

// Decision is the policy's choice. Amount is the player's total bet after
// the move and Moved is the number of chips taken from the stack.
type Decision struct {
	Action ActionType
	Amount int64
	Moved  int64
	Bluff  bool
	Reason string
}

func (d Decision) String() string {
	switch d.Action {
	case PlayerActionTypeFold:
		if d.Reason != "" {
			return "folded (" + d.Reason + ")"
		}
		return "folded"
	case PlayerActionTypeCall:
		return fmt.Sprintf("called %d", d.Moved)
	case PlayerActionTypeRaise:
		return fmt.Sprintf("raised to %d", d.Amount)
	}
	return "did nothing"
}

type tierRule struct {
	bluffEarly   float64
	bluffLate    float64
	bluffWeights [3]float64 // raise, call, fold
	choose       func(s, odds float64) ActionType
	raiseSize    func(rng *rand.Rand, s float64) int64
}

func threshold(raiseAt, oddsBelow, callAt float64) func(s, odds float64) ActionType {
	return func(s, odds float64) ActionType {
		if s > raiseAt && odds < oddsBelow {
			return PlayerActionTypeRaise
		}
		if s > callAt {
			return PlayerActionTypeCall
		}
		return PlayerActionTypeFold
	}
}

func scaledRaise(base int64, scale float64) func(*rand.Rand, float64) int64 {
	return func(rng *rand.Rand, s float64) int64 {
		return base + randIntInclusive(rng, 0, int64(s*scale))
	}
}

func uniformRaise(lo, hi int64) func(*rand.Rand, float64) int64 {
	return func(rng *rand.Rand, _ float64) int64 {
		return randIntInclusive(rng, lo, hi)
	}
}

// Beginner is handled separately: it ignores its hand entirely.
var tierRules = map[Tier]tierRule{
	TierEasy: {
		choose:    threshold(0.5, 2, 0.2),
		raiseSize: uniformRaise(20, 80),
	},
	TierMedium: {
		choose:    threshold(0.5, 0.3, 0.3),
		raiseSize: scaledRaise(50, 100),
	},
	TierHard: {
		bluffEarly:   0.2,
		bluffLate:    0.1,
		bluffWeights: [3]float64{0.4, 0.5, 0.1},
		choose:       threshold(0.6, 2, 0.4),
		raiseSize:    scaledRaise(100, 150),
	},
	TierMaster: {
		bluffEarly:   0.25,
		bluffLate:    0.15,
		bluffWeights: [3]float64{0.5, 0.4, 0.1},
		choose:       threshold(0.7, 0.2, 0.4),
		raiseSize:    scaledRaise(150, 200),
	},
}

var bluffActions = [3]ActionType{PlayerActionTypeRaise, PlayerActionTypeCall, PlayerActionTypeFold}

// Decide picks an action for an automated player of the given tier.
// It does not mutate anything; the match applies the returned Decision.
func Decide(tier Tier, v View, rng *rand.Rand) Decision {
	toCall := v.TableBet - v.OwnBet
	if toCall > v.Stack {
		return Decision{Action: PlayerActionTypeFold, Amount: v.OwnBet, Reason: "can't call"}
	}

	var (
		choice ActionType
		raise  int64
		bluff  bool
	)
	if tier == TierBeginner {
		choice = []ActionType{PlayerActionTypeFold, PlayerActionTypeCall, PlayerActionTypeRaise}[weightedIndex(rng, []float64{0.2, 0.6, 0.2})]
		raise = randIntInclusive(rng, 10, 100)
	} else {
		rule, ok := tierRules[tier]
		if !ok {
			rule = tierRules[TierMaster]
		}
		chance := rule.bluffLate
		if v.Early() {
			chance = rule.bluffEarly
		}
		if chance > 0 && rng.Float64() < chance {
			bluff = true
			choice = bluffActions[weightedIndex(rng, rule.bluffWeights[:])]
		} else {
			choice = rule.choose(v.Strength, v.PotOdds())
		}
		raise = rule.raiseSize(rng, v.Strength)
	}

	d := Decision{Action: choice, Amount: v.OwnBet, Bluff: bluff}
	switch choice {
	case PlayerActionTypeCall:
		d.Moved = min64(toCall, v.Stack)
	case PlayerActionTypeRaise:
		d.Moved = min64(toCall+raise, v.Stack)
	}
	if d.Moved < 0 {
		d.Moved = 0
	}
	d.Amount = v.OwnBet + d.Moved
	return d
}
