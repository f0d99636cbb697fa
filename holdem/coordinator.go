package holdem

import "fmt"

// applyLocked commits a decision for p: chips move from stack to bet and
// pot in one step, and the table bet follows the highest bet.
func (m *Match) applyLocked(p *Player, d Decision) {
	m.turn++
	switch d.Action {
	case PlayerActionTypeFold:
		p.setFolded(true)
	case PlayerActionTypeCall, PlayerActionTypeRaise:
		m.pot += p.placeBet(d.Moved)
		if p.bet > m.curBet {
			m.curBet = p.bet
		}
	}
	p.setLastAction(d.Action)
	m.log.Append(fmt.Sprintf("Turn %d: %s %s", m.turn, p.Name, d))
}

func (m *Match) afterActionLocked() error {
	m.advanceTurnLocked()
	if !m.bettingRoundOverLocked() {
		return nil
	}
	if err := m.advancePhaseLocked(); err != nil {
		return err
	}
	for m.phase < PhaseTypeShowdown && m.activeCountLocked() <= 1 {
		if err := m.advancePhaseLocked(); err != nil {
			return err
		}
	}
	if m.phase == PhaseTypeShowdown {
		m.settleLocked()
	}
	return nil
}

func (m *Match) activeCountLocked() int {
	n := 0
	for _, p := range m.players {
		if !p.folded {
			n++
		}
	}
	return n
}

// advanceTurnLocked moves to the next seat, skipping folded players while
// more than one player is still in the hand.
func (m *Match) advanceTurnLocked() {
	n := len(m.players)
	next := (m.actionSeat + 1) % n
	if m.activeCountLocked() > 1 {
		for m.players[next].folded {
			next = (next + 1) % n
		}
	}
	m.actionSeat = next
}

// bettingRoundOverLocked 本轮下注是否结束：
// 只剩 ≤1 个未弃牌玩家，或所有未弃牌玩家下注相等（筹码为 0 的视为已跟）。
func (m *Match) bettingRoundOverLocked() bool {
	var (
		active int
		maxBet int64
	)
	for _, p := range m.players {
		if p.folded {
			continue
		}
		active++
		if p.bet > maxBet {
			maxBet = p.bet
		}
	}
	if active <= 1 {
		return true
	}
	for _, p := range m.players {
		if p.folded {
			continue
		}
		if p.bet != maxBet && p.stack != 0 {
			return false
		}
	}
	return true
}

// advancePhaseLocked deals the next street and clears every bet. The
// action seat is left where it is.
func (m *Match) advancePhaseLocked() error {
	if m.phase >= PhaseTypeShowdown {
		return ErrInvalidState("no phase after showdown")
	}
	next := m.phase + 1
	for i := 0; i < communityCardsFor(next); i++ {
		c, err := m.deck.Draw()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidState("dealing "+next.String()), err)
		}
		m.community = append(m.community, c)
	}
	m.phase = next
	m.curBet = 0
	for _, p := range m.players {
		p.resetBet()
	}
	return nil
}
