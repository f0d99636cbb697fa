package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"holdem-arcade/apps/server/internal/store"

	"github.com/charmbracelet/log"
)

// SQLService persists the ledger in sqlite or postgres.
type SQLService struct {
	db          *store.DB
	logger      *log.Logger
	recentLimit int
	savedLimit  int
}

func NewSQLService(db *store.DB, logger *log.Logger) (*SQLService, error) {
	if db == nil {
		return nil, errors.New("ledger: nil database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, ledgerSchema); err != nil {
		return nil, err
	}
	return &SQLService{
		db:          db,
		logger:      logger.WithPrefix("ledger"),
		recentLimit: defaultRecentLimit,
		savedLimit:  defaultSavedLimit,
	}, nil
}

var ledgerSchema = []string{
	`
CREATE TABLE IF NOT EXISTS hand_history (
    user_id BIGINT NOT NULL,
    source TEXT NOT NULL,
    hand_id TEXT NOT NULL,
    played_at_ms BIGINT NOT NULL,
    summary_json TEXT NOT NULL,
    is_saved INTEGER NOT NULL DEFAULT 0,
    saved_at_ms BIGINT,
    updated_at_ms BIGINT NOT NULL,
    PRIMARY KEY (user_id, source, hand_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_hand_history_recent ON hand_history(user_id, source, played_at_ms DESC)`,
	`
CREATE TABLE IF NOT EXISTS hand_events (
    user_id BIGINT NOT NULL,
    source TEXT NOT NULL,
    hand_id TEXT NOT NULL,
    seq BIGINT NOT NULL,
    event_type TEXT NOT NULL,
    envelope_b64 TEXT NOT NULL,
    server_ts_ms BIGINT,
    PRIMARY KEY (user_id, source, hand_id, seq)
)`,
}

// Close is a no-op: the database handle belongs to the caller.
func (s *SQLService) Close() error { return nil }

func (s *SQLService) RecordHand(ctx context.Context, rec HandRecord) error {
	if rec.Source == "" {
		rec.Source = SourceLive
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("ledger: encode summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
INSERT INTO hand_history (user_id, source, hand_id, played_at_ms, summary_json, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, source, hand_id) DO UPDATE SET
    played_at_ms = excluded.played_at_ms,
    summary_json = excluded.summary_json,
    updated_at_ms = excluded.updated_at_ms`),
		rec.UserID, string(rec.Source), rec.HandID, rec.PlayedAt.UTC().UnixMilli(), string(summary), nowMs); err != nil {
		return fmt.Errorf("ledger: upsert hand: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM hand_events WHERE user_id = ? AND source = ? AND hand_id = ?`),
		rec.UserID, string(rec.Source), rec.HandID); err != nil {
		return err
	}
	insert := s.db.Rebind(`
INSERT INTO hand_events (user_id, source, hand_id, seq, event_type, envelope_b64, server_ts_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, ev := range rec.Events {
		var ts sql.NullInt64
		if ev.ServerTsMs != nil {
			ts = sql.NullInt64{Int64: *ev.ServerTsMs, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insert,
			rec.UserID, string(rec.Source), rec.HandID, int64(ev.Seq), ev.EventType, ev.EnvelopeB64, ts); err != nil {
			return fmt.Errorf("ledger: insert event seq=%d: %w", ev.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("hand recorded", "user", rec.UserID, "source", rec.Source, "hand", rec.HandID, "events", len(rec.Events))
	return nil
}

func (s *SQLService) ListRecent(ctx context.Context, userID uint64, source Source, limit int) ([]HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT hand_id, played_at_ms, summary_json, is_saved, saved_at_ms, updated_at_ms
FROM hand_history
WHERE user_id = ? AND source = ?
ORDER BY played_at_ms DESC, hand_id DESC
LIMIT ?`), userID, string(source), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryItem, 0)
	for rows.Next() {
		var (
			item                  HistoryItem
			playedAtMs, updatedMs int64
			summary               string
			saved                 int
			savedAt               sql.NullInt64
		)
		if err := rows.Scan(&item.HandID, &playedAtMs, &summary, &saved, &savedAt, &updatedMs); err != nil {
			return nil, err
		}
		item.Source = source
		item.PlayedAt = time.UnixMilli(playedAtMs).UTC()
		item.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		item.IsSaved = saved != 0
		if savedAt.Valid {
			at := time.UnixMilli(savedAt.Int64).UTC()
			item.SavedAt = &at
		}
		if err := json.Unmarshal([]byte(summary), &item.Summary); err != nil {
			s.logger.Warn("bad summary json", "hand", item.HandID, "err", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLService) GetHandEvents(ctx context.Context, userID uint64, source Source, handID string) ([]EventItem, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT 1 FROM hand_history WHERE user_id = ? AND source = ? AND hand_id = ?`),
		userID, string(source), handID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT seq, event_type, envelope_b64, server_ts_ms
FROM hand_events
WHERE user_id = ? AND source = ? AND hand_id = ?
ORDER BY seq ASC`), userID, string(source), handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]EventItem, 0)
	for rows.Next() {
		var (
			ev  EventItem
			seq int64
			ts  sql.NullInt64
		)
		if err := rows.Scan(&seq, &ev.EventType, &ev.EnvelopeB64, &ts); err != nil {
			return nil, err
		}
		ev.Seq = uint64(seq)
		if ts.Valid {
			v := ts.Int64
			ev.ServerTsMs = &v
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLService) SetSaved(ctx context.Context, userID uint64, source Source, handID string, saved bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, s.db.Rebind(
		`SELECT is_saved FROM hand_history WHERE user_id = ? AND source = ? AND hand_id = ?`),
		userID, string(source), handID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if (current != 0) == saved {
		return nil
	}

	nowMs := time.Now().UTC().UnixMilli()
	var savedAt sql.NullInt64
	flag := 0
	if saved {
		var count int
		if err := tx.QueryRowContext(ctx, s.db.Rebind(
			`SELECT COUNT(*) FROM hand_history WHERE user_id = ? AND is_saved = 1`), userID).Scan(&count); err != nil {
			return err
		}
		if count >= s.savedLimit {
			return ErrSavedLimitReach
		}
		savedAt = sql.NullInt64{Int64: nowMs, Valid: true}
		flag = 1
	}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
UPDATE hand_history SET is_saved = ?, saved_at_ms = ?, updated_at_ms = ?
WHERE user_id = ? AND source = ? AND hand_id = ?`),
		flag, savedAt, nowMs, userID, string(source), handID); err != nil {
		return err
	}
	return tx.Commit()
}
