package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"holdem-arcade/apps/server/internal/store"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
)

const queryTimeout = 5 * time.Second

// SQLManager persists accounts and sessions in sqlite or postgres.
type SQLManager struct {
	db         *store.DB
	sessionTTL time.Duration
	logger     *log.Logger
}

func NewSQLManager(db *store.DB, sessionTTL time.Duration, logger *log.Logger) (*SQLManager, error) {
	if db == nil {
		return nil, errors.New("auth: nil database")
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := db.EnsureSchema(ctx, authSchema(db)); err != nil {
		return nil, err
	}
	return &SQLManager{db: db, sessionTTL: sessionTTL, logger: logger.WithPrefix("auth")}, nil
}

func authSchema(db *store.DB) []string {
	return []string{
		`
CREATE TABLE IF NOT EXISTS accounts (
    id ` + db.AutoIncrementKey() + `,
    username TEXT UNIQUE,
    display_name TEXT NOT NULL,
    guest INTEGER NOT NULL DEFAULT 0,
    password_hash TEXT,
    created_at_ms BIGINT NOT NULL,
    last_login_at_ms BIGINT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS auth_sessions (
    token TEXT PRIMARY KEY,
    account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    issued_at_ms BIGINT NOT NULL,
    expires_at_ms BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_sessions_account ON auth_sessions(account_id, expires_at_ms)`,
	}
}

// Close is a no-op: the database handle belongs to the caller.
func (m *SQLManager) Close() error { return nil }

func (m *SQLManager) Register(username, password string) (Account, string, error) {
	if err := validateUsername(username); err != nil {
		return Account{}, "", err
	}
	if err := validatePassword(password); err != nil {
		return Account{}, "", err
	}
	normalized := normalizeUsername(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	var id int64
	err = tx.QueryRowContext(ctx, m.db.Rebind(`
INSERT INTO accounts (username, display_name, guest, password_hash, created_at_ms, last_login_at_ms)
VALUES (?, ?, 0, ?, ?, ?)
RETURNING id`), normalized, normalized, string(hash), nowMs, nowMs).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Account{}, "", ErrUsernameTaken
		}
		return Account{}, "", err
	}
	token, err := m.issueSessionTx(ctx, tx, uint64(id), nowMs)
	if err != nil {
		return Account{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return Account{}, "", err
	}
	m.logger.Info("registered", "account", id, "username", normalized)
	return Account{ID: uint64(id), Username: normalized, DisplayName: normalized}, token, nil
}

func (m *SQLManager) Login(username, password string) (Account, string, error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return Account{}, "", ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, "", err
	}
	defer tx.Rollback()

	var (
		id   int64
		hash sql.NullString
	)
	err = tx.QueryRowContext(ctx, m.db.Rebind(
		`SELECT id, password_hash FROM accounts WHERE username = ? AND guest = 0`), normalized).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, "", err
	}
	if !hash.Valid || bcrypt.CompareHashAndPassword([]byte(hash.String), []byte(password)) != nil {
		return Account{}, "", ErrInvalidCredentials
	}

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, m.db.Rebind(
		`UPDATE accounts SET last_login_at_ms = ? WHERE id = ?`), nowMs, id); err != nil {
		return Account{}, "", err
	}
	token, err := m.issueSessionTx(ctx, tx, uint64(id), nowMs)
	if err != nil {
		return Account{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return Account{}, "", err
	}
	return Account{ID: uint64(id), Username: normalized, DisplayName: normalized}, token, nil
}

func (m *SQLManager) ResolveSession(token string) (Account, bool) {
	if token == "" {
		return Account{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var (
		acct      Account
		id        int64
		username  sql.NullString
		guest     int
		expiresAt int64
	)
	err := m.db.QueryRowContext(ctx, m.db.Rebind(`
SELECT a.id, a.username, a.display_name, a.guest, s.expires_at_ms
FROM auth_sessions s
JOIN accounts a ON a.id = s.account_id
WHERE s.token = ?`), token).Scan(&id, &username, &acct.DisplayName, &guest, &expiresAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			m.logger.Warn("resolve session failed", "err", err)
		}
		return Account{}, false
	}

	now := time.Now().UTC()
	if now.UnixMilli() >= expiresAt {
		m.Logout(token)
		return Account{}, false
	}
	if _, err := m.db.ExecContext(ctx, m.db.Rebind(
		`UPDATE auth_sessions SET expires_at_ms = ? WHERE token = ?`),
		now.Add(m.sessionTTL).UnixMilli(), token); err != nil {
		m.logger.Warn("refresh session failed", "err", err)
	}

	acct.ID = uint64(id)
	acct.Username = username.String
	acct.Guest = guest != 0
	return acct, true
}

func (m *SQLManager) Guest(token string) (Account, string, bool, error) {
	if acct, ok := m.ResolveSession(token); ok {
		return acct, token, true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, "", false, err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	var id int64
	if err := tx.QueryRowContext(ctx, m.db.Rebind(`
INSERT INTO accounts (display_name, guest, created_at_ms, last_login_at_ms)
VALUES ('guest', 1, ?, ?)
RETURNING id`), nowMs, nowMs).Scan(&id); err != nil {
		return Account{}, "", false, err
	}
	name := guestName(uint64(id))
	if _, err := tx.ExecContext(ctx, m.db.Rebind(
		`UPDATE accounts SET display_name = ? WHERE id = ?`), name, id); err != nil {
		return Account{}, "", false, err
	}
	sessionToken, err := m.issueSessionTx(ctx, tx, uint64(id), nowMs)
	if err != nil {
		return Account{}, "", false, err
	}
	if err := tx.Commit(); err != nil {
		return Account{}, "", false, err
	}
	return Account{ID: uint64(id), DisplayName: name, Guest: true}, sessionToken, false, nil
}

func (m *SQLManager) Logout(token string) {
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := m.db.ExecContext(ctx, m.db.Rebind(`DELETE FROM auth_sessions WHERE token = ?`), token); err != nil {
		m.logger.Warn("logout failed", "err", err)
	}
}

func (m *SQLManager) issueSessionTx(ctx context.Context, tx *sql.Tx, accountID uint64, nowMs int64) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	expiresAt := nowMs + m.sessionTTL.Milliseconds()
	if _, err := tx.ExecContext(ctx, m.db.Rebind(`
INSERT INTO auth_sessions (token, account_id, issued_at_ms, expires_at_ms)
VALUES (?, ?, ?, ?)`), token, accountID, nowMs, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}
