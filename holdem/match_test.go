package holdem

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"holdem-arcade/card"
)

func stackedMatch(t *testing.T, cfg Config, top string) *Match {
	t.Helper()
	deck, err := StackedDeck(mustCards(t, top)...)
	if err != nil {
		t.Fatal(err)
	}
	cfg.DeckOverride = deck
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	m, err := NewMatch(cfg)
	if err != nil {
		t.Fatalf("NewMatch err: %v", err)
	}
	if err := m.Deal(); err != nil {
		t.Fatalf("Deal err: %v", err)
	}
	return m
}

func logContains(s Snapshot, want string) bool {
	for _, l := range s.Log {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

func TestNewMatch_Validation(t *testing.T) {
	for _, n := range []int{0, 6} {
		if _, err := NewMatch(Config{Opponents: n, Difficulty: TierEasy, Seed: 1}); err == nil {
			t.Fatalf("expected error for %d opponents", n)
		}
	}
	if _, err := NewMatch(Config{Opponents: 2, Difficulty: 9, Seed: 1}); err == nil {
		t.Fatalf("expected error for bad tier")
	}
	if _, err := NewMatch(Config{Opponents: 2, Difficulty: TierEasy, OpponentNames: []string{"x"}, Seed: 1}); err == nil {
		t.Fatalf("expected error for name count mismatch")
	}

	m, err := NewMatch(Config{Opponents: 2, Difficulty: TierHard, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := m.Snapshot()
	if len(s.Players) != 3 || s.Players[2].Name != "AI2 Hard" || !s.Players[0].Human {
		t.Fatalf("unexpected players: %+v", s.Players)
	}
	if s.Players[1].Stack != DefaultStartingStack || s.Players[1].Tier != TierHard {
		t.Fatalf("unexpected opponent: %+v", s.Players[1])
	}
}

func TestMatch_MisuseErrors(t *testing.T) {
	m, err := NewMatch(Config{Opponents: 1, Difficulty: TierEasy, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Act(Call()); !errors.Is(err, ErrNotDealt) {
		t.Fatalf("expected ErrNotDealt, got %v", err)
	}
	if err := m.NextHand(); !errors.Is(err, ErrNotDealt) {
		t.Fatalf("expected ErrNotDealt, got %v", err)
	}
	if err := m.Deal(); err != nil {
		t.Fatal(err)
	}
	if err := m.Deal(); !errors.Is(err, ErrHandInProgress) {
		t.Fatalf("expected ErrHandInProgress, got %v", err)
	}
	if err := m.Step(); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn while human acts, got %v", err)
	}
}

func TestAct_InvalidRaiseLeavesStateAlone(t *testing.T) {
	m := stackedMatch(t, Config{Opponents: 1, Difficulty: TierEasy}, "As Ks 7c 2d")
	before := m.Snapshot()

	for _, in := range []Intent{RaiseTo(10), RaiseTo(5), RaiseTo(1001), {Action: PlayerActionTypeNone}} {
		err := m.Act(in)
		var iie *InvalidIntentError
		if !errors.As(err, &iie) || !errors.Is(err, ErrInvalidIntent) {
			t.Fatalf("%s: expected InvalidIntentError, got %v", in, err)
		}
	}
	after := m.Snapshot()
	if after.Pot != before.Pot || after.Turn != before.Turn || after.Players[0].Stack != before.Players[0].Stack {
		t.Fatalf("state changed by rejected intent: before=%+v after=%+v", before, after)
	}
	if !after.HumanToAct {
		t.Fatalf("human should still be asked to act")
	}
}

func TestMatch_OpponentFoldsHumanTakesPot(t *testing.T) {
	m := stackedMatch(t, Config{Opponents: 1, Difficulty: TierEasy}, "As Ks 7c 2d")
	s := m.Snapshot()
	if s.TableBet != DefaultOpeningBet || s.Pot != 0 || !s.HumanToAct {
		t.Fatalf("unexpected opening state: %+v", s)
	}

	if err := m.Act(Call()); err != nil {
		t.Fatalf("call err: %v", err)
	}
	s = m.Snapshot()
	if s.Pot != 10 || s.Players[0].Stack != 990 || s.ActionSeat != 1 {
		t.Fatalf("after call: %+v", s)
	}

	// 7-2 scores exactly 0.2, which an easy opponent folds
	if err := m.Step(); err != nil {
		t.Fatalf("step err: %v", err)
	}
	s = m.Snapshot()
	if s.Phase != PhaseTypeShowdown || len(s.CommunityCards) != 5 {
		t.Fatalf("expected fast-forward to showdown, got %s with %d cards", s.Phase, len(s.CommunityCards))
	}
	if s.Players[0].Stack != 1000 || s.Players[1].Stack != 1000 || s.Pot != 0 {
		t.Fatalf("unexpected stacks: %+v", s.Players)
	}
	if !logContains(s, "Turn 2: AI1 Easy folded") || !logContains(s, "You won the pot (opponents folded)!") {
		t.Fatalf("log = %v", s.Log)
	}
	if s.Showdown == nil || !s.Showdown.Uncontested || s.Showdown.Pot != 10 {
		t.Fatalf("showdown = %+v", s.Showdown)
	}
	if err := m.Step(); !errors.Is(err, ErrHandEnded) {
		t.Fatalf("expected ErrHandEnded, got %v", err)
	}
	if err := m.NextHand(); err != nil {
		t.Fatalf("NextHand err: %v", err)
	}
	if s = m.Snapshot(); s.Hand != 2 || s.Phase != PhaseTypePreflop {
		t.Fatalf("second hand not dealt: %+v", s)
	}
}

func TestMatch_HumanBustsAtShowdown(t *testing.T) {
	m := stackedMatch(t, Config{Opponents: 1, Difficulty: TierEasy}, "7c 2d Ks Kh Ad 9c 5h 4s 3c")

	if err := m.Act(RaiseTo(1000)); err != nil {
		t.Fatalf("all-in raise err: %v", err)
	}
	if _, err := m.Advance(); err != nil {
		t.Fatalf("advance err: %v", err)
	}

	s := m.Snapshot()
	if s.Phase != PhaseTypeShowdown {
		t.Fatalf("expected showdown, got %s", s.Phase)
	}
	if s.Players[0].Stack != 0 || s.Players[1].Stack != 2000 {
		t.Fatalf("unexpected stacks: %+v", s.Players)
	}
	if s.Outcome != OutcomeLost {
		t.Fatalf("expected loss, got %s", s.Outcome)
	}
	if !logContains(s, "Game Over: You ran out of chips!") || !logContains(s, "AI1 Easy won the pot!") {
		t.Fatalf("log = %v", s.Log)
	}
	if len(s.Players[1].HandCards) != 2 {
		t.Fatalf("opponent cards should be revealed at showdown")
	}
	if err := m.NextHand(); !errors.Is(err, ErrMatchOver) {
		t.Fatalf("expected ErrMatchOver, got %v", err)
	}
}

func TestMatch_EqualHandsSplitPot(t *testing.T) {
	m := stackedMatch(t, Config{Opponents: 1, Difficulty: TierEasy}, "Ah 3d Ad 3c 9s 9h 5c 6d Js")

	for guard := 0; m.HandLive(); guard++ {
		if guard > 50 {
			t.Fatalf("hand did not finish")
		}
		if m.HumanToAct() {
			if err := m.Act(Call()); err != nil {
				t.Fatalf("call err: %v", err)
			}
			continue
		}
		if _, err := m.Advance(); err != nil {
			t.Fatalf("advance err: %v", err)
		}
	}

	s := m.Snapshot()
	if s.Players[0].Stack != 1000 || s.Players[1].Stack != 1000 {
		t.Fatalf("split should restore both stacks: %+v", s.Players)
	}
	if len(s.Showdown.Winners) != 2 || !logContains(s, "Pot split among winners!") {
		t.Fatalf("showdown = %+v log = %v", s.Showdown, s.Log)
	}
}

var boardSize = map[Phase]int{
	PhaseTypePreflop:  0,
	PhaseTypeFlop:     3,
	PhaseTypeTurn:     4,
	PhaseTypeRiver:    5,
	PhaseTypeShowdown: 5,
}

func TestMatch_ChipConservationAndLinearPhases(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		m, err := NewMatch(Config{Opponents: 3, Difficulty: Tiers[seed%5], Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		pick := rand.New(rand.NewSource(seed))
		const total = 4 * DefaultStartingStack
		if err := m.Deal(); err != nil {
			t.Fatal(err)
		}
		lastPhase, lastHand := PhaseTypePreflop, 1

		for i := 0; i < 5000 && m.Outcome() == OutcomeNone; i++ {
			s := m.Snapshot()
			if got := s.TotalChips(); got != total {
				t.Fatalf("seed %d: chips %d, want %d", seed, got, total)
			}
			if s.Hand == lastHand && s.Phase < lastPhase {
				t.Fatalf("seed %d: phase went back from %s to %s", seed, lastPhase, s.Phase)
			}
			if s.Hand != lastHand && s.Phase != PhaseTypePreflop {
				t.Fatalf("seed %d: new hand started in %s", seed, s.Phase)
			}
			lastPhase, lastHand = s.Phase, s.Hand
			if want := boardSize[s.Phase]; len(s.CommunityCards) != want {
				t.Fatalf("seed %d: %d community cards in %s", seed, len(s.CommunityCards), s.Phase)
			}

			switch {
			case s.Phase == PhaseTypeShowdown:
				err = m.NextHand()
			case s.HumanToAct:
				var in Intent
				switch pick.Intn(3) {
				case 0:
					in = Fold()
				case 1:
					in = Call()
				default:
					in = RaiseTo(s.MinRaiseTo + pick.Int63n(50))
					if in.Amount > s.MaxRaiseTo {
						in = Call()
					}
				}
				err = m.Act(in)
			default:
				err = m.Step()
			}
			if err != nil {
				t.Fatalf("seed %d step %d: %v", seed, i, err)
			}
		}
	}
}

func TestSnapshot_HidesOpponentCards(t *testing.T) {
	m := stackedMatch(t, Config{Opponents: 2, Difficulty: TierMedium}, "As Ks 7c 2d")
	s := m.Snapshot()
	if len(s.HumanCards) != 2 || s.HumanCards[0] != card.CardSpadeA {
		t.Fatalf("human cards = %v", s.HumanCards)
	}
	for _, p := range s.Players[1:] {
		if len(p.HandCards) != 0 {
			t.Fatalf("opponent %s cards leaked: %v", p.Name, p.HandCards)
		}
	}
	if s.MinRaiseTo != 11 || s.MaxRaiseTo != 1000 {
		t.Fatalf("raise bounds = [%d,%d]", s.MinRaiseTo, s.MaxRaiseTo)
	}
}

func TestDeal_BustedPlayerSitsOut(t *testing.T) {
	m := dealtMatch(t, 2)
	m.phase = PhaseTypeShowdown
	m.players[0].stack += m.players[2].stack
	m.players[2].stack = 0
	if err := m.NextHand(); err != nil {
		t.Fatal(err)
	}
	p := m.players[2]
	if !p.SittingOut() || !p.Folded() || len(p.HandCards()) != 0 {
		t.Fatalf("busted player should sit out: %+v", p)
	}
}
