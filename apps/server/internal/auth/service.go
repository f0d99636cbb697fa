package auth

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account identifies the player behind a session. Guests have no username;
// DisplayName falls back to "guest-<id>".
type Account struct {
	ID          uint64
	Username    string
	DisplayName string
	Guest       bool
}

// Service is the account/session contract used by the gateway and the
// HTTP handlers.
type Service interface {
	Register(username, password string) (Account, string, error)
	Login(username, password string) (Account, string, error)
	ResolveSession(token string) (Account, bool)
	// Guest returns the account bound to token when the session is valid,
	// otherwise it creates a guest account with a fresh token.
	Guest(token string) (acct Account, sessionToken string, reused bool, err error)
	Logout(token string)
	Close() error
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUsername
	}
	return nil
}

// bcrypt only looks at the first 72 bytes.
func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func guestName(id uint64) string {
	return "guest-" + strconv.FormatUint(id, 10)
}
