package holdem

import (
	"fmt"
	"math/rand"
	"sync"

	"holdem-arcade/card"
)

// Match is one human against 1..5 automated opponents, hand after hand,
// until one side runs out of chips. It is safe for concurrent use.
type Match struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	players []*Player // seat order, seat 0 is the human
	deck    *Deck

	// hand state
	hand       int
	phase      Phase
	community  card.CardList
	pot        int64
	curBet     int64
	actionSeat int
	turn       int

	outcome      Outcome
	log          *EventLog
	lastShowdown *ShowdownResult
}

func NewMatch(cfg Config) (*Match, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng, err := newRNG(cfg.Seed)
	if err != nil {
		return nil, err
	}
	m := &Match{
		cfg:     cfg,
		rng:     rng,
		players: make([]*Player, 0, cfg.Opponents+1),
		log:     NewEventLog(cfg.LogCapacity),
	}
	m.players = append(m.players, newPlayer("You", HumanSeat, Human{}, cfg.StartingStack))
	for i := 0; i < cfg.Opponents; i++ {
		name := fmt.Sprintf("AI%d %s", i+1, cfg.Difficulty)
		if len(cfg.OpponentNames) > 0 {
			name = cfg.OpponentNames[i]
		}
		m.players = append(m.players, newPlayer(name, i+1, Automated{Tier: cfg.Difficulty}, cfg.StartingStack))
	}
	return m, nil
}

func (m *Match) Config() Config { return m.cfg }

// Player returns the player at seat, or nil.
func (m *Match) Player(seat int) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat < 0 || seat >= len(m.players) {
		return nil
	}
	return m.players[seat]
}

func (m *Match) Seats() int { return len(m.players) }

func (m *Match) Outcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// HumanToAct reports whether the match is waiting on an Intent.
func (m *Match) HumanToAct() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.humanToActLocked()
}

// HandLive reports whether a hand is dealt and not yet settled.
func (m *Match) HandLive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handLiveLocked()
}

// LastShowdown returns the settlement of the most recent finished hand.
func (m *Match) LastShowdown() *ShowdownResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastShowdown
}

func (m *Match) handLiveLocked() bool {
	return m.phase >= PhaseTypePreflop && m.phase < PhaseTypeShowdown
}

func (m *Match) humanToActLocked() bool {
	if m.outcome != OutcomeNone || !m.handLiveLocked() || m.actionSeat != HumanSeat {
		return false
	}
	h := m.players[HumanSeat]
	return !h.folded && h.stack > 0
}

// Deal starts the first hand, or a new one once the last is settled.
func (m *Match) Deal() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.outcome != OutcomeNone {
		return ErrMatchOver
	}
	if m.handLiveLocked() {
		return ErrHandInProgress
	}
	return m.dealLocked()
}

// NextHand deals again after a showdown.
func (m *Match) NextHand() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.outcome != OutcomeNone {
		return ErrMatchOver
	}
	switch {
	case m.phase == PhaseTypeNone:
		return ErrNotDealt
	case m.handLiveLocked():
		return ErrHandInProgress
	}
	return m.dealLocked()
}

func (m *Match) dealLocked() error {
	if m.cfg.DeckOverride != nil {
		d, err := NewDeckFrom(m.cfg.DeckOverride)
		if err != nil {
			return err
		}
		m.deck = d
	} else {
		m.deck = NewShuffledDeck(m.rng)
	}

	m.hand++
	m.turn = 0
	m.pot = 0
	m.community = nil
	m.lastShowdown = nil
	m.actionSeat = HumanSeat

	for _, p := range m.players {
		p.ResetForNewHand()
		if p.stack <= 0 {
			p.sitOut()
			continue
		}
		for i := 0; i < 2; i++ {
			c, err := m.deck.Draw()
			if err != nil {
				m.phase = PhaseTypeNone
				return fmt.Errorf("%w: %w", ErrInvalidState("dealing hole cards"), err)
			}
			p.AddHandCard(c)
		}
	}

	m.phase = PhaseTypePreflop
	m.curBet = m.cfg.OpeningBet
	m.log.Append(fmt.Sprintf("Hand #%d dealt", m.hand))
	return nil
}

// Act applies the human's intent. Invalid intents leave the match untouched.
func (m *Match) Act(in Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLiveLocked(); err != nil {
		return err
	}
	if !m.humanToActLocked() {
		return ErrOutOfTurn
	}

	h := m.players[HumanSeat]
	var d Decision
	switch in.Action {
	case PlayerActionTypeFold:
		d = Decision{Action: PlayerActionTypeFold, Amount: h.bet}
	case PlayerActionTypeCall:
		moved := min64(m.curBet-h.bet, h.stack)
		if moved < 0 {
			moved = 0
		}
		d = Decision{Action: PlayerActionTypeCall, Amount: h.bet + moved, Moved: moved}
	case PlayerActionTypeRaise:
		if in.Amount <= m.curBet {
			return invalidIntent("raise to %d must exceed table bet %d", in.Amount, m.curBet)
		}
		if in.Amount > h.stack+h.bet {
			return invalidIntent("raise to %d exceeds available %d", in.Amount, h.stack+h.bet)
		}
		d = Decision{Action: PlayerActionTypeRaise, Amount: in.Amount, Moved: in.Amount - h.bet}
	default:
		return invalidIntent("unknown action %s", in.Action)
	}

	m.applyLocked(h, d)
	return m.afterActionLocked()
}

// Step resolves exactly one turn that does not need the human.
// It returns ErrOutOfTurn while the human is to act.
func (m *Match) Step() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLiveLocked(); err != nil {
		return err
	}
	if m.humanToActLocked() {
		return ErrOutOfTurn
	}
	return m.stepLocked()
}

// Advance steps until the human must act or the hand is settled, and
// returns the number of turns resolved.
func (m *Match) Advance() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLiveLocked(); err != nil {
		return 0, err
	}
	n := 0
	for m.handLiveLocked() && !m.humanToActLocked() {
		if err := m.stepLocked(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// NextActor returns the seat whose turn it is, or -1 when no hand is live.
func (m *Match) NextActor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.handLiveLocked() {
		return -1
	}
	return m.actionSeat
}

func (m *Match) checkLiveLocked() error {
	if m.outcome != OutcomeNone {
		return ErrMatchOver
	}
	switch m.phase {
	case PhaseTypeNone:
		return ErrNotDealt
	case PhaseTypeShowdown:
		return ErrHandEnded
	}
	return nil
}

func (m *Match) stepLocked() error {
	p := m.players[m.actionSeat]
	switch {
	case p.folded:
		// skipping is suppressed with one player left; the guard ends the round
		return m.afterActionLocked()
	case p.stack == 0:
		if m.curBet > p.bet {
			m.applyLocked(p, Decision{Action: PlayerActionTypeFold, Amount: p.bet, Reason: "out of chips"})
		} else {
			m.applyLocked(p, Decision{Action: PlayerActionTypeCall, Amount: p.bet})
		}
	default:
		view := View{
			Strength:       HandStrength(p.handCards, m.community, m.rng),
			Pot:            m.pot,
			TableBet:       m.curBet,
			OwnBet:         p.bet,
			Stack:          p.stack,
			CommunityCount: len(m.community),
		}
		m.applyLocked(p, Decide(p.Tier(), view, m.rng))
	}
	return m.afterActionLocked()
}
