// Package ledger stores finished hands per account: a summary row plus the
// encoded envelope tape the player saw. It is an audit trail; matches are
// never rebuilt from it.
package ledger

import (
	"context"
	"errors"
	"time"

	"holdem-arcade/apps/server/internal/store"

	"github.com/charmbracelet/log"
)

const (
	defaultRecentLimit = 200
	defaultSavedLimit  = 50
)

type Source string

const (
	SourceLive   Source = "live"
	SourceReplay Source = "replay"
)

func ParseSource(raw string) (Source, bool) {
	switch Source(raw) {
	case SourceLive, "":
		return SourceLive, true
	case SourceReplay:
		return SourceReplay, true
	}
	return "", false
}

var (
	ErrNotFound        = errors.New("not found")
	ErrSavedLimitReach = errors.New("saved hand limit reached")
)

type Service interface {
	Close() error
	RecordHand(ctx context.Context, rec HandRecord) error
	ListRecent(ctx context.Context, userID uint64, source Source, limit int) ([]HistoryItem, error)
	GetHandEvents(ctx context.Context, userID uint64, source Source, handID string) ([]EventItem, error)
	SetSaved(ctx context.Context, userID uint64, source Source, handID string, saved bool) error
}

// HandRecord is written once per player per finished hand. Recording the
// same (user, source, hand) again replaces the summary and the tape.
type HandRecord struct {
	UserID   uint64
	Source   Source
	HandID   string
	PlayedAt time.Time
	Summary  map[string]any
	Events   []EventItem
}

type HistoryItem struct {
	HandID    string         `json:"hand_id"`
	Source    Source         `json:"source"`
	PlayedAt  time.Time      `json:"played_at"`
	IsSaved   bool           `json:"is_saved"`
	SavedAt   *time.Time     `json:"saved_at,omitempty"`
	Summary   map[string]any `json:"summary"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type EventItem struct {
	Seq         uint64 `json:"seq"`
	EventType   string `json:"event_type"`
	EnvelopeB64 string `json:"envelope_b64"`
	ServerTsMs  *int64 `json:"server_ts_ms,omitempty"`
}

// New returns the SQL-backed ledger when db is non-nil and the in-memory
// one otherwise.
func New(db *store.DB, logger *log.Logger) (Service, error) {
	if db == nil {
		return NewMemoryService(), nil
	}
	return NewSQLService(db, logger)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultRecentLimit {
		return defaultRecentLimit
	}
	return limit
}

func validateRecord(rec HandRecord) error {
	if rec.UserID == 0 {
		return errors.New("ledger: missing user id")
	}
	if rec.HandID == "" {
		return errors.New("ledger: missing hand id")
	}
	if _, ok := ParseSource(string(rec.Source)); !ok {
		return errors.New("ledger: unknown source " + string(rec.Source))
	}
	return nil
}
