package ladder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"holdem-arcade/apps/server/internal/store"
	"holdem-arcade/holdem"

	"github.com/charmbracelet/log"
)

type SQLService struct {
	db     *store.DB
	logger *log.Logger
}

var ladderSchema = []string{`
CREATE TABLE IF NOT EXISTS ladder_progress (
    user_id BIGINT PRIMARY KEY,
    highest_completed INTEGER NOT NULL DEFAULT 0,
    completed_json TEXT NOT NULL DEFAULT '[]',
    matches_won INTEGER NOT NULL DEFAULT 0,
    matches_lost INTEGER NOT NULL DEFAULT 0,
    updated_at_ms BIGINT NOT NULL
)`}

func NewSQLService(db *store.DB, logger *log.Logger) (*SQLService, error) {
	if db == nil {
		return nil, errors.New("ladder: nil database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, ladderSchema); err != nil {
		return nil, err
	}
	return &SQLService{db: db, logger: logger.WithPrefix("ladder")}, nil
}

func (s *SQLService) Close() error { return nil }

func (s *SQLService) GetProgress(ctx context.Context, userID uint64) (*Progress, error) {
	sp, err := s.read(ctx, s.db.DB, userID)
	if err != nil {
		return nil, err
	}
	return sp.toProgress(userID), nil
}

func (s *SQLService) RecordResult(ctx context.Context, userID uint64, tier holdem.Tier, outcome holdem.Outcome) (*Progress, error) {
	if userID == 0 {
		return nil, errors.New("ladder: invalid user id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sp, err := s.read(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := sp.apply(tier, outcome); err != nil {
		return nil, err
	}
	completed, err := json.Marshal(sp.CompletedTiers)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
INSERT INTO ladder_progress (user_id, highest_completed, completed_json, matches_won, matches_lost, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    highest_completed = excluded.highest_completed,
    completed_json = excluded.completed_json,
    matches_won = excluded.matches_won,
    matches_lost = excluded.matches_lost,
    updated_at_ms = excluded.updated_at_ms`),
		userID, int(sp.HighestCompleted), string(completed), sp.Won, sp.Lost, sp.UpdatedAt.UnixMilli()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("result recorded", "user", userID, "tier", tier, "outcome", outcome)
	return sp.toProgress(userID), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLService) read(ctx context.Context, q queryer, userID uint64) (*storedProgress, error) {
	var (
		highest   int
		completed string
		updatedMs int64
		sp        storedProgress
	)
	err := q.QueryRowContext(ctx, s.db.Rebind(`
SELECT highest_completed, completed_json, matches_won, matches_lost, updated_at_ms
FROM ladder_progress WHERE user_id = ?`), userID).Scan(&highest, &completed, &sp.Won, &sp.Lost, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return &storedProgress{CompletedTiers: []int{}, UpdatedAt: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(completed), &sp.CompletedTiers); err != nil {
		return nil, err
	}
	sp.HighestCompleted = holdem.Tier(highest)
	sp.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &sp, nil
}
