package holdem

import (
	"fmt"
	"strings"
)

// Phase 游戏阶段
type Phase byte

const (
	PhaseTypeNone     Phase = 0
	PhaseTypePreflop  Phase = 1
	PhaseTypeFlop     Phase = 2
	PhaseTypeTurn     Phase = 3
	PhaseTypeRiver    Phase = 4
	PhaseTypeShowdown Phase = 5
)

var PhaseTypeDictionary = map[Phase]string{
	PhaseTypeNone:     "none",
	PhaseTypePreflop:  "preflop",
	PhaseTypeFlop:     "flop",
	PhaseTypeTurn:     "turn",
	PhaseTypeRiver:    "river",
	PhaseTypeShowdown: "showdown",
}

func (p Phase) String() string {
	if s, ok := PhaseTypeDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", byte(p))
}

// communityCardsFor 进入该阶段时应补发的公共牌数量
func communityCardsFor(p Phase) int {
	switch p {
	case PhaseTypeFlop:
		return 3
	case PhaseTypeTurn, PhaseTypeRiver:
		return 1
	}
	return 0
}

// ActionType 动作类型：0-NONE 1-FOLD 2-CALL 3-RAISE
type ActionType byte

const (
	PlayerActionTypeNone  ActionType = 0
	PlayerActionTypeFold  ActionType = 1
	PlayerActionTypeCall  ActionType = 2
	PlayerActionTypeRaise ActionType = 3
)

var PlayerActionTypeDictionary = map[ActionType]string{
	PlayerActionTypeNone:  "NONE",
	PlayerActionTypeFold:  "FOLD",
	PlayerActionTypeCall:  "CALL",
	PlayerActionTypeRaise: "RAISE",
}

func (a ActionType) String() string {
	if s, ok := PlayerActionTypeDictionary[a]; ok {
		return s
	}
	return "OTHER"
}

// ParseActionType accepts "fold", "call" or "raise" in any case.
func ParseActionType(s string) (ActionType, bool) {
	for a, name := range PlayerActionTypeDictionary {
		if a != PlayerActionTypeNone && strings.EqualFold(name, s) {
			return a, true
		}
	}
	return PlayerActionTypeNone, false
}

// Tier is the skill level of an automated opponent.
type Tier byte

const (
	TierBeginner Tier = iota + 1
	TierEasy
	TierMedium
	TierHard
	TierMaster
)

var TierDictionary = map[Tier]string{
	TierBeginner: "Beginner",
	TierEasy:     "Easy",
	TierMedium:   "Medium",
	TierHard:     "Hard",
	TierMaster:   "Master",
}

// Tiers lists every tier from weakest to strongest.
var Tiers = []Tier{TierBeginner, TierEasy, TierMedium, TierHard, TierMaster}

func (t Tier) String() string {
	if s, ok := TierDictionary[t]; ok {
		return s
	}
	return fmt.Sprintf("tier(%d)", byte(t))
}

func (t Tier) Valid() bool {
	return t >= TierBeginner && t <= TierMaster
}

// ParseTier accepts a tier name ("hard") or number ("4").
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	for t, name := range TierDictionary {
		if strings.EqualFold(name, s) || fmt.Sprintf("%d", byte(t)) == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// Outcome 整场比赛的结果
type Outcome byte

const (
	OutcomeNone Outcome = 0
	OutcomeLost Outcome = 1 // 人类玩家筹码归零
	OutcomeWon  Outcome = 2 // 所有电脑玩家筹码归零
)

var OutcomeDictionary = map[Outcome]string{
	OutcomeNone: "none",
	OutcomeLost: "lost",
	OutcomeWon:  "won",
}

func (o Outcome) String() string { return OutcomeDictionary[o] }

// Intent is a discrete request from the human seat.
// For a raise, Amount is the total bet the player wants to have committed
// this phase.
type Intent struct {
	Action ActionType
	Amount int64
}

func Fold() Intent { return Intent{Action: PlayerActionTypeFold} }
func Call() Intent { return Intent{Action: PlayerActionTypeCall} }

func RaiseTo(total int64) Intent {
	return Intent{Action: PlayerActionTypeRaise, Amount: total}
}

func (i Intent) String() string {
	if i.Action == PlayerActionTypeRaise {
		return fmt.Sprintf("%s %d", i.Action, i.Amount)
	}
	return i.Action.String()
}

const HumanSeat = 0
