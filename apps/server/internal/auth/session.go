package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Manager keeps accounts and sessions in memory. It backs STORE_MODE=memory
// and the tests.
type Manager struct {
	mu sync.Mutex

	nextAccountID uint64
	sessionTTL    time.Duration
	now           func() time.Time
	sessions      map[string]sessionRecord
	accountsByID  map[uint64]accountRecord
	accountsByKey map[string]uint64
}

type sessionRecord struct {
	AccountID uint64
	ExpiresAt time.Time
}

type accountRecord struct {
	Account
	PasswordHash []byte
	LastLoginAt  time.Time
}

func NewManager() *Manager {
	return &Manager{
		nextAccountID: 100000,
		sessionTTL:    defaultSessionTTL,
		now:           time.Now,
		sessions:      make(map[string]sessionRecord),
		accountsByID:  make(map[uint64]accountRecord),
		accountsByKey: make(map[string]uint64),
	}
}

func (m *Manager) Close() error { return nil }

func (m *Manager) issueSessionLocked(accountID uint64, now time.Time) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	m.sessions[token] = sessionRecord{AccountID: accountID, ExpiresAt: now.Add(m.sessionTTL)}
	return token, nil
}

// resolveSessionLocked slides the expiry forward on every hit.
func (m *Manager) resolveSessionLocked(token string, now time.Time) (Account, bool) {
	if token == "" {
		return Account{}, false
	}
	rec, ok := m.sessions[token]
	if !ok {
		return Account{}, false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return Account{}, false
	}
	rec.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec
	return m.accountsByID[rec.AccountID].Account, true
}

func (m *Manager) Register(username, password string) (Account, string, error) {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.accountsByKey[normalized]; taken {
		return Account{}, "", ErrUsernameTaken
	}

	m.nextAccountID++
	now := m.now()
	acct := Account{ID: m.nextAccountID, Username: normalized, DisplayName: normalized}
	m.accountsByID[acct.ID] = accountRecord{Account: acct, PasswordHash: hash, LastLoginAt: now}
	m.accountsByKey[normalized] = acct.ID

	token, err := m.issueSessionLocked(acct.ID, now)
	if err != nil {
		return Account{}, "", err
	}
	return acct, token, nil
}

func (m *Manager) Login(username, password string) (Account, string, error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return Account{}, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.accountsByKey[normalized]
	if !ok {
		return Account{}, "", ErrInvalidCredentials
	}
	rec := m.accountsByID[id]
	if len(rec.PasswordHash) == 0 || bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)) != nil {
		return Account{}, "", ErrInvalidCredentials
	}

	now := m.now()
	rec.LastLoginAt = now
	m.accountsByID[id] = rec
	token, err := m.issueSessionLocked(id, now)
	if err != nil {
		return Account{}, "", err
	}
	return rec.Account, token, nil
}

func (m *Manager) ResolveSession(token string) (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveSessionLocked(token, m.now())
}

func (m *Manager) Guest(token string) (Account, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if acct, ok := m.resolveSessionLocked(token, now); ok {
		return acct, token, true, nil
	}
	m.nextAccountID++
	acct := Account{ID: m.nextAccountID, DisplayName: guestName(m.nextAccountID), Guest: true}
	m.accountsByID[acct.ID] = accountRecord{Account: acct, LastLoginAt: now}
	sessionToken, err := m.issueSessionLocked(acct.ID, now)
	if err != nil {
		return Account{}, "", false, err
	}
	return acct, sessionToken, false, nil
}

func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
