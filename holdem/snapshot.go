package holdem

import "holdem-arcade/card"

type PlayerSnapshot struct {
	Name       string
	Seat       int
	Human      bool
	Tier       Tier
	Stack      int64
	Bet        int64
	Folded     bool
	SittingOut bool
	LastAction ActionType
	HandCards  []card.Card // own cards, or everyone's still in the hand at showdown
}

type Snapshot struct {
	Hand  int
	Turn  int
	Phase Phase

	Pot        int64
	TableBet   int64
	ActionSeat int
	HumanToAct bool
	MinRaiseTo int64
	MaxRaiseTo int64

	CommunityCards []card.Card
	HumanCards     []card.Card
	Players        []PlayerSnapshot
	Log            []string

	Outcome  Outcome
	Showdown *ShowdownResult
}

// Snapshot returns the table as the human sees it.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.players[HumanSeat]
	s := Snapshot{
		Hand:           m.hand,
		Turn:           m.turn,
		Phase:          m.phase,
		Pot:            m.pot,
		TableBet:       m.curBet,
		ActionSeat:     m.actionSeat,
		HumanToAct:     m.humanToActLocked(),
		CommunityCards: append([]card.Card{}, m.community...),
		HumanCards:     append([]card.Card{}, h.handCards...),
		Log:            m.log.Lines(),
		Outcome:        m.outcome,
		Showdown:       m.lastShowdown,
	}
	if !m.handLiveLocked() {
		s.ActionSeat = -1
	}
	if s.HumanToAct {
		s.MinRaiseTo = m.curBet + 1
		s.MaxRaiseTo = h.stack + h.bet
	}

	reveal := m.phase == PhaseTypeShowdown
	for _, p := range m.players {
		ps := PlayerSnapshot{
			Name:       p.Name,
			Seat:       p.Seat,
			Human:      p.IsHuman(),
			Tier:       p.Tier(),
			Stack:      p.stack,
			Bet:        p.bet,
			Folded:     p.folded,
			SittingOut: p.sittingOut,
			LastAction: p.lastAction,
		}
		if p.IsHuman() || (reveal && !p.folded) {
			ps.HandCards = append([]card.Card{}, p.handCards...)
		}
		s.Players = append(s.Players, ps)
	}
	return s
}

// TotalChips is every stack plus the pot. It is constant for the life of
// a match.
func (s Snapshot) TotalChips() int64 {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Stack
	}
	return total
}
