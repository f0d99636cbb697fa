package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"holdem-arcade/apps/server/internal/ladder"
	"holdem-arcade/apps/server/internal/ledger"
	"holdem-arcade/apps/server/internal/table"
	"holdem-arcade/holdem"
	"holdem-arcade/holdem/npc"

	"github.com/charmbracelet/log"
)

// Options are the table defaults applied to every match.
type Options struct {
	StartingStack int64
	OpeningBet    int64
	ShowdownDelay time.Duration
	// EnforceLadder refuses tiers the account has not unlocked yet.
	EnforceLadder bool
	IdleTTL       time.Duration
}

// JoinRequest selects the match a player wants. Fresh abandons a running
// match instead of resuming it.
type JoinRequest struct {
	Tier      holdem.Tier
	Opponents int
	Fresh     bool
}

// TableInfo is the public listing of a running table.
type TableInfo struct {
	ID        string `json:"id"`
	MatchID   string `json:"match_id"`
	Owner     string `json:"owner"`
	Tier      string `json:"tier"`
	Opponents int    `json:"opponents"`
	Hand      int    `json:"hand"`
	Phase     string `json:"phase"`
	Outcome   string `json:"outcome"`
}

// Lobby owns every running table; each account has at most one.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	byUser map[uint64]*table.Table
	nextID uint64

	npcs   *npc.Manager
	ledger ledger.Service
	ladder ladder.Service
	opts   Options
	logger *log.Logger
	root   *log.Logger
}

func New(npcs *npc.Manager, ledgerService ledger.Service, ladderService ladder.Service, opts Options, logger *log.Logger) *Lobby {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	return &Lobby{
		tables: make(map[string]*table.Table),
		byUser: make(map[uint64]*table.Table),
		npcs:   npcs,
		ledger: ledgerService,
		ladder: ladderService,
		opts:   opts,
		logger: logger.WithPrefix("lobby"),
		root:   logger,
	}
}

// Join resumes the owner's running match or starts a new one.
func (l *Lobby) Join(ctx context.Context, owner table.Owner, req JoinRequest, send func(userID uint64, data []byte)) (*table.Table, bool, error) {
	if !req.Tier.Valid() {
		return nil, false, fmt.Errorf("invalid tier %d", req.Tier)
	}
	if req.Opponents < holdem.MinOpponents || req.Opponents > holdem.MaxOpponents {
		return nil, false, fmt.Errorf("opponents must be %d..%d", holdem.MinOpponents, holdem.MaxOpponents)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if t := l.byUser[owner.UserID]; t != nil && !t.IsClosed() {
		if !req.Fresh && t.Snapshot().Outcome == holdem.OutcomeNone {
			l.logger.Info("resume", "user", owner.UserID, "table", t.ID)
			return t, true, nil
		}
		l.removeLocked(t)
	}

	if l.opts.EnforceLadder && l.ladder != nil {
		progress, err := l.ladder.GetProgress(ctx, owner.UserID)
		if err != nil {
			return nil, false, err
		}
		if !progress.Unlocked(req.Tier) {
			return nil, false, ladder.ErrTierLocked
		}
	}

	lineup, err := l.npcs.Lineup(req.Tier, req.Opponents)
	if err != nil {
		return nil, false, err
	}
	l.nextID++
	id := fmt.Sprintf("table_%d", l.nextID)
	t, err := table.New(id, owner, table.Config{
		StartingStack: l.opts.StartingStack,
		OpeningBet:    l.opts.OpeningBet,
		ShowdownDelay: l.opts.ShowdownDelay,
	}, lineup, send, l.ledger, l.root)
	if err != nil {
		return nil, false, err
	}
	t.AddHandEndHook(l.recordLadderResult(owner.UserID, req.Tier))

	l.tables[id] = t
	l.byUser[owner.UserID] = t
	l.logger.Info("new table", "user", owner.UserID, "table", id, "tier", req.Tier, "opponents", req.Opponents)
	return t, false, nil
}

func (l *Lobby) recordLadderResult(userID uint64, tier holdem.Tier) table.HandEndHook {
	return func(info table.HandEndInfo) {
		if l.ladder == nil || info.Snapshot.Outcome == holdem.OutcomeNone {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := l.ladder.RecordResult(ctx, userID, tier, info.Snapshot.Outcome)
		if err != nil && !errors.Is(err, ladder.ErrTierLocked) {
			l.logger.Warn("ladder update failed", "user", userID, "err", err)
		}
	}
}

// TableFor returns the owner's running table, if any.
func (l *Lobby) TableFor(userID uint64) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t := l.byUser[userID]
	if t == nil || t.IsClosed() {
		return nil
	}
	return t
}

// Leave stops the owner's table.
func (l *Lobby) Leave(userID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t := l.byUser[userID]; t != nil {
		l.removeLocked(t)
	}
}

func (l *Lobby) removeLocked(t *table.Table) {
	t.Stop()
	delete(l.tables, t.ID)
	if l.byUser[t.Owner.UserID] == t {
		delete(l.byUser, t.Owner.UserID)
	}
	l.logger.Info("table removed", "table", t.ID)
}

func (l *Lobby) GetTable(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

func (l *Lobby) ListTables() []TableInfo {
	l.mu.RLock()
	out := make([]TableInfo, 0, len(l.tables))
	for _, t := range l.tables {
		snap := t.Snapshot()
		out = append(out, TableInfo{
			ID:        t.ID,
			MatchID:   t.MatchID,
			Owner:     t.Owner.Name,
			Tier:      t.Lineup().Tier.String(),
			Opponents: len(t.Lineup().NPCs),
			Hand:      snap.Hand,
			Phase:     snap.Phase.String(),
			Outcome:   snap.Outcome.String(),
		})
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReapIdle removes closed tables and tables idle for longer than IdleTTL.
func (l *Lobby) ReapIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.tables {
		if t.IsClosed() || t.IsIdleFor(l.opts.IdleTTL) {
			l.removeLocked(t)
			n++
		}
	}
	return n
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (l *Lobby) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.ReapIdle(); n > 0 {
				l.logger.Info("reaped idle tables", "count", n)
			}
		}
	}
}
