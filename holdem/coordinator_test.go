package holdem

import (
	"testing"

	"holdem-arcade/card"
)

func dealtMatch(t *testing.T, opponents int) *Match {
	t.Helper()
	m, err := NewMatch(Config{Opponents: opponents, Difficulty: TierEasy, Seed: 11})
	if err != nil {
		t.Fatalf("NewMatch err: %v", err)
	}
	if err := m.Deal(); err != nil {
		t.Fatalf("Deal err: %v", err)
	}
	return m
}

func TestBettingRoundOver_Guard(t *testing.T) {
	m := dealtMatch(t, 3)
	setBets := func(bets ...int64) {
		for i, b := range bets {
			m.players[i].bet = b
		}
	}

	setBets(40, 40, 40, 40)
	if !m.bettingRoundOverLocked() {
		t.Fatalf("equal bets should close the round")
	}

	setBets(40, 60, 40, 40)
	if m.bettingRoundOverLocked() {
		t.Fatalf("unequal bets with chips behind should keep the round open")
	}

	// the short player is all in
	m.players[0].stack = 0
	setBets(40, 60, 60, 60)
	if !m.bettingRoundOverLocked() {
		t.Fatalf("all-in player below the max bet should not block the round")
	}

	m.players[0].stack = 100
	m.players[1].folded = true
	m.players[2].folded = true
	m.players[3].folded = true
	if !m.bettingRoundOverLocked() {
		t.Fatalf("a single remaining player closes the round")
	}
}

func TestAdvanceTurn_SkipsFolded(t *testing.T) {
	m := dealtMatch(t, 3)
	m.players[1].folded = true
	m.players[2].folded = true
	m.actionSeat = 0
	m.advanceTurnLocked()
	if m.actionSeat != 3 {
		t.Fatalf("expected seat 3, got %d", m.actionSeat)
	}
	m.advanceTurnLocked()
	if m.actionSeat != 0 {
		t.Fatalf("expected wrap to seat 0, got %d", m.actionSeat)
	}

	// one player left: plain increment
	m.players[3].folded = true
	m.advanceTurnLocked()
	if m.actionSeat != 1 {
		t.Fatalf("expected seat 1 with skipping suppressed, got %d", m.actionSeat)
	}
}

func TestAdvancePhase_DealsAndResetsBets(t *testing.T) {
	m := dealtMatch(t, 2)
	m.players[0].bet = 30
	m.players[1].bet = 30
	m.curBet = 30
	m.actionSeat = 2

	want := []struct {
		phase Phase
		board int
	}{
		{PhaseTypeFlop, 3},
		{PhaseTypeTurn, 4},
		{PhaseTypeRiver, 5},
		{PhaseTypeShowdown, 5},
	}
	for _, w := range want {
		if err := m.advancePhaseLocked(); err != nil {
			t.Fatalf("advance to %s: %v", w.phase, err)
		}
		if m.phase != w.phase || len(m.community) != w.board {
			t.Fatalf("phase=%s board=%d, want %s/%d", m.phase, len(m.community), w.phase, w.board)
		}
		if m.curBet != 0 || m.players[0].bet != 0 || m.players[1].bet != 0 {
			t.Fatalf("bets not reset at %s", m.phase)
		}
		if m.actionSeat != 2 {
			t.Fatalf("action seat moved to %d", m.actionSeat)
		}
	}
	if err := m.advancePhaseLocked(); err == nil {
		t.Fatalf("expected error past showdown")
	}
}

func TestSettle_RemainderToFirstWinner(t *testing.T) {
	m := dealtMatch(t, 2)
	board := mustCards(t, "9s 9h 5c 6d Js")
	m.players[0].handCards = card.CardList(mustCards(t, "Ah 3d"))
	m.players[1].handCards = card.CardList(mustCards(t, "Ad 3c"))
	m.players[2].folded = true
	m.community = board
	m.pot = 25
	m.phase = PhaseTypeShowdown
	before0, before1 := m.players[0].stack, m.players[1].stack

	m.settleLocked()

	res := m.lastShowdown
	if res == nil || len(res.Winners) != 2 {
		t.Fatalf("expected two winners, got %+v", res)
	}
	if got := m.players[0].stack - before0; got != 13 {
		t.Fatalf("first winner got %d, want 13", got)
	}
	if got := m.players[1].stack - before1; got != 12 {
		t.Fatalf("second winner got %d, want 12", got)
	}
	if m.pot != 0 {
		t.Fatalf("pot should be paid out, got %d", m.pot)
	}
	lines := m.log.Lines()
	if lines[len(lines)-1] != "Pot split among winners!" {
		t.Fatalf("last log line = %q", lines[len(lines)-1])
	}
}

func TestSettle_SingleSurvivorTakesPot(t *testing.T) {
	m := dealtMatch(t, 3)
	m.players[0].folded = true
	m.players[1].folded = true
	m.players[3].folded = true
	m.pot = 120
	before := m.players[2].stack
	m.phase = PhaseTypeShowdown

	m.settleLocked()

	if got := m.players[2].stack - before; got != 120 {
		t.Fatalf("survivor got %d, want 120", got)
	}
	if !m.lastShowdown.Uncontested {
		t.Fatalf("expected uncontested result")
	}
}

func TestEventLog_Bounded(t *testing.T) {
	l := NewEventLog(3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		l.Append(s)
	}
	got := l.Lines()
	if len(got) != 3 || got[0] != "c" || got[2] != "e" {
		t.Fatalf("lines = %v", got)
	}
	if l.Total() != 5 {
		t.Fatalf("total = %d", l.Total())
	}
}
