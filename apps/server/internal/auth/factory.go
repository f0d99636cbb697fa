package auth

import (
	"os"
	"strings"
	"time"

	"holdem-arcade/apps/server/internal/store"

	"github.com/charmbracelet/log"
)

func sessionTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("AUTH_SESSION_TTL"))
	if raw == "" {
		return defaultSessionTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		return defaultSessionTTL
	}
	return ttl
}

// New picks the SQL-backed manager when db is non-nil and the in-memory one
// otherwise.
func New(db *store.DB, logger *log.Logger) (Service, error) {
	if db == nil {
		return NewManager(), nil
	}
	return NewSQLManager(db, sessionTTLFromEnv(), logger)
}
