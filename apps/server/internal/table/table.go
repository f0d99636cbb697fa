package table

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"holdem-arcade/apps/server/internal/ledger"
	"holdem-arcade/holdem"
	"holdem-arcade/holdem/npc"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Table is one player's match against NPCs, run as an actor: every state
// change happens on the run goroutine in response to an Event.
type Table struct {
	ID      string
	MatchID string
	Owner   Owner
	Config  Config

	mu       sync.RWMutex
	match    *holdem.Match
	lineup   *npc.Lineup
	closed   bool
	stopOnce sync.Once

	events chan Event
	done   chan struct{}

	serverSeq   uint64
	stepPending bool
	nextHandAt  time.Time
	lastActive  time.Time

	send   func(userID uint64, data []byte)
	ledger ledger.Service
	tape   []ledger.EventItem
	logger *log.Logger

	handEndHooks []HandEndHook
}

// Owner is the account seated as the human player.
type Owner struct {
	UserID uint64
	Name   string
}

type Config struct {
	StartingStack int64
	OpeningBet    int64
	Seed          int64
	// ShowdownDelay is the pause before the next hand is dealt
	// automatically. Negative disables auto-deal; the client then sends
	// next_hand.
	ShowdownDelay time.Duration
	// NoThinkDelay resolves NPC turns immediately.
	NoThinkDelay bool
}

type EventType int

const (
	EventIntent EventType = iota
	EventNextHand
	EventStep
	EventResync
	EventClose
)

type Event struct {
	Type      EventType
	UserID    uint64
	Intent    holdem.Intent
	Hand      int
	Timestamp time.Time
	Response  chan error
}

// HandEndInfo is emitted after each hand is settled.
type HandEndInfo struct {
	TableID  string
	HandID   string
	Snapshot holdem.Snapshot
	Result   *holdem.ShowdownResult
}

type HandEndHook func(info HandEndInfo)

var (
	ErrTableClosed = errors.New("table closed")
	ErrNotSeated   = errors.New("not seated at this table")
)

const (
	defaultShowdownDelay = 3 * time.Second
	tickInterval         = 250 * time.Millisecond
)

// New creates the match, deals the first hand and starts the actor.
func New(
	id string,
	owner Owner,
	cfg Config,
	lineup *npc.Lineup,
	send func(userID uint64, data []byte),
	ledgerService ledger.Service,
	logger *log.Logger,
) (*Table, error) {
	if lineup == nil || len(lineup.NPCs) == 0 {
		return nil, errors.New("table: empty npc lineup")
	}
	if cfg.ShowdownDelay == 0 {
		cfg.ShowdownDelay = defaultShowdownDelay
	}
	match, err := holdem.NewMatch(holdem.Config{
		Opponents:     len(lineup.NPCs),
		Difficulty:    lineup.Tier,
		OpponentNames: lineup.Names(),
		StartingStack: cfg.StartingStack,
		OpeningBet:    cfg.OpeningBet,
		Seed:          cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}

	t := &Table{
		ID:         id,
		MatchID:    uuid.NewString(),
		Owner:      owner,
		Config:     cfg,
		match:      match,
		lineup:     lineup,
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		lastActive: time.Now(),
		send:       send,
		ledger:     ledgerService,
		logger:     logger.WithPrefix("table").With("table", id),
	}
	if err := match.Deal(); err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	t.logger.Info("created", "owner", owner.UserID, "tier", lineup.Tier, "opponents", len(lineup.NPCs), "match", t.MatchID)

	t.mu.Lock()
	t.afterChangeLocked()
	t.mu.Unlock()

	go t.run()
	return t, nil
}

func (t *Table) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-t.events:
			err := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			t.tick()
		case <-t.done:
			t.logger.Info("actor stopped")
			return
		}
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}
	switch e.Type {
	case EventIntent:
		return t.handleIntent(e.UserID, e.Intent)
	case EventNextHand:
		if e.UserID != t.Owner.UserID {
			return ErrNotSeated
		}
		return t.startNextHandLocked()
	case EventStep:
		return t.handleStep(e.Hand)
	case EventResync:
		if e.UserID != t.Owner.UserID {
			return ErrNotSeated
		}
		t.lastActive = e.Timestamp
		t.sendSnapshotLocked()
		return nil
	case EventClose:
		t.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (t *Table) handleIntent(userID uint64, in holdem.Intent) error {
	if userID != t.Owner.UserID {
		return ErrNotSeated
	}
	t.lastActive = time.Now()
	if err := t.match.Act(in); err != nil {
		return err
	}
	t.logger.Debug("human acted", "intent", in.String())
	t.afterChangeLocked()
	return nil
}

// handleStep resolves one NPC turn. Steps scheduled for an earlier hand are
// dropped.
func (t *Table) handleStep(hand int) error {
	t.stepPending = false
	if !t.match.HandLive() || t.match.Snapshot().Hand != hand {
		return nil
	}
	if err := t.match.Step(); err != nil {
		if errors.Is(err, holdem.ErrOutOfTurn) {
			return nil
		}
		t.logger.Error("step failed", "err", err)
		return err
	}
	t.afterChangeLocked()
	return nil
}

// afterChangeLocked pushes the new state and decides what happens next:
// another NPC turn, the showdown, or nothing while the human thinks.
func (t *Table) afterChangeLocked() {
	t.sendSnapshotLocked()
	if !t.match.HandLive() {
		t.handleHandEndLocked()
		return
	}
	if !t.match.HumanToAct() {
		t.scheduleStepLocked()
	}
}

func (t *Table) startNextHandLocked() error {
	if err := t.match.NextHand(); err != nil {
		return err
	}
	t.nextHandAt = time.Time{}
	t.tape = t.tape[:0]
	t.logger.Debug("hand dealt", "hand", t.match.Snapshot().Hand)
	t.afterChangeLocked()
	return nil
}

func (t *Table) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.nextHandAt.IsZero() || time.Now().Before(t.nextHandAt) {
		return
	}
	t.nextHandAt = time.Time{}
	if err := t.startNextHandLocked(); err != nil && !errors.Is(err, holdem.ErrHandInProgress) {
		t.logger.Warn("delayed hand start failed", "err", err)
	}
}

// SubmitEvent hands an event to the actor and waits for its result.
func (t *Table) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}
	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Table) stopLocked() {
	t.closed = true
	t.nextHandAt = time.Time{}
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// IsIdleFor reports whether the owner has not acted or resynced for ttl.
func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return time.Since(t.lastActive) >= ttl
}

func (t *Table) Snapshot() holdem.Snapshot {
	return t.match.Snapshot()
}

func (t *Table) Lineup() *npc.Lineup { return t.lineup }

func (t *Table) AddHandEndHook(hook HandEndHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handEndHooks = append(t.handEndHooks, hook)
}
