// Package ladder tracks each account's progress up the difficulty tiers:
// winning a match at a tier unlocks the next one.
package ladder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"holdem-arcade/apps/server/internal/store"
	"holdem-arcade/holdem"

	"github.com/charmbracelet/log"
)

var ErrTierLocked = errors.New("tier is locked")

type Service interface {
	Close() error
	GetProgress(ctx context.Context, userID uint64) (*Progress, error)
	RecordResult(ctx context.Context, userID uint64, tier holdem.Tier, outcome holdem.Outcome) (*Progress, error)
}

type Progress struct {
	UserID           uint64      `json:"user_id"`
	HighestCompleted holdem.Tier `json:"highest_completed"`
	HighestUnlocked  holdem.Tier `json:"highest_unlocked"`
	CompletedTiers   []int       `json:"completed_tiers"`
	MatchesWon       int         `json:"matches_won"`
	MatchesLost      int         `json:"matches_lost"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Unlocked reports whether the player may start a match at tier.
func (p *Progress) Unlocked(tier holdem.Tier) bool {
	return tier.Valid() && tier <= p.HighestUnlocked
}

// New returns the SQL-backed service when db is non-nil and the in-memory
// one otherwise.
func New(db *store.DB, logger *log.Logger) (Service, error) {
	if db == nil {
		return NewMemoryService(), nil
	}
	return NewSQLService(db, logger)
}

type storedProgress struct {
	HighestCompleted holdem.Tier
	CompletedTiers   []int
	Won, Lost        int
	UpdatedAt        time.Time
}

// apply folds one finished match into sp. Only a win at an unlocked tier
// counts towards completion.
func (sp *storedProgress) apply(tier holdem.Tier, outcome holdem.Outcome) error {
	if !tier.Valid() {
		return errors.New("ladder: invalid tier")
	}
	if tier > highestUnlocked(sp.HighestCompleted) {
		return ErrTierLocked
	}
	switch outcome {
	case holdem.OutcomeWon:
		sp.Won++
		if !containsInt(sp.CompletedTiers, int(tier)) {
			sp.CompletedTiers = append(sp.CompletedTiers, int(tier))
			sort.Ints(sp.CompletedTiers)
		}
		if tier > sp.HighestCompleted {
			sp.HighestCompleted = tier
		}
	case holdem.OutcomeLost:
		sp.Lost++
	default:
		return errors.New("ladder: match not finished")
	}
	sp.UpdatedAt = time.Now().UTC()
	return nil
}

func (sp *storedProgress) toProgress(userID uint64) *Progress {
	return &Progress{
		UserID:           userID,
		HighestCompleted: sp.HighestCompleted,
		HighestUnlocked:  highestUnlocked(sp.HighestCompleted),
		CompletedTiers:   append([]int{}, sp.CompletedTiers...),
		MatchesWon:       sp.Won,
		MatchesLost:      sp.Lost,
		UpdatedAt:        sp.UpdatedAt,
	}
}

func highestUnlocked(completed holdem.Tier) holdem.Tier {
	next := completed + 1
	if next > holdem.TierMaster {
		return holdem.TierMaster
	}
	if next < holdem.TierBeginner {
		return holdem.TierBeginner
	}
	return next
}

func containsInt(items []int, target int) bool {
	for _, v := range items {
		if v == target {
			return true
		}
	}
	return false
}

type MemoryService struct {
	mu    sync.Mutex
	store map[uint64]*storedProgress
}

func NewMemoryService() *MemoryService {
	return &MemoryService{store: make(map[uint64]*storedProgress)}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) GetProgress(_ context.Context, userID uint64) (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(userID).toProgress(userID), nil
}

func (s *MemoryService) RecordResult(_ context.Context, userID uint64, tier holdem.Tier, outcome holdem.Outcome) (*Progress, error) {
	if userID == 0 {
		return nil, errors.New("ladder: invalid user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.getOrCreateLocked(userID)
	next := *sp
	next.CompletedTiers = append([]int{}, sp.CompletedTiers...)
	if err := next.apply(tier, outcome); err != nil {
		return nil, err
	}
	*sp = next
	return sp.toProgress(userID), nil
}

func (s *MemoryService) getOrCreateLocked(userID uint64) *storedProgress {
	if sp := s.store[userID]; sp != nil {
		return sp
	}
	sp := &storedProgress{CompletedTiers: []int{}, UpdatedAt: time.Now().UTC()}
	s.store[userID] = sp
	return sp
}
