// Package session stores the Pinterest session cookie used to reach
// private boards. Sessions live in the system keychain when one is
// available, otherwise in an encrypted file under the user config dir.
// BOARDHARVEST_SESSION always wins over anything stored.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultAccount is the name used when no --account is given
const DefaultAccount = "default"

var (
	// ErrNotFound is returned when no session is stored under a name
	ErrNotFound = errors.New("session not found")
	// ErrInvalid is returned for a session without a name or cookie
	ErrInvalid = errors.New("invalid session")
	// ErrStoreUnavailable is returned when no backing store can be opened
	ErrStoreUnavailable = errors.New("no session store available")
)

// Session is one stored Pinterest login
type Session struct {
	Account      string    `json:"account"`
	Cookie       string    `json:"cookie"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Validate checks the fields every store requires
func (s *Session) Validate() error {
	if s == nil || strings.TrimSpace(s.Account) == "" || strings.TrimSpace(s.Cookie) == "" {
		return ErrInvalid
	}
	return nil
}

// Masked returns a copy safe to print
func (s *Session) Masked() Session {
	c := *s
	c.Cookie = Mask(s.Cookie)
	return c
}

// Store is a backend that can keep sessions
type Store interface {
	Save(s *Session) error
	Load(account string) (*Session, error)
	List() ([]*Session, error)
	Delete(account string) error
}

// Manager reads from the environment first and writes to its primary store
type Manager struct {
	primary Store
	env     Store
}

// NewManager opens the keychain, falling back to the encrypted file store
func NewManager() (*Manager, error) {
	env := NewEnvironmentStore()

	if kr, err := NewKeyringStore(); err == nil {
		return &Manager{primary: kr, env: env}, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	file, err := NewEncryptedFileStore(filepath.Join(dir, "sessions.enc"), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &Manager{primary: file, env: env}, nil
}

// NewManagerWithStore builds a manager over an explicit store
func NewManagerWithStore(primary Store) *Manager {
	return &Manager{primary: primary, env: NewEnvironmentStore()}
}

// Save stamps and stores a session
func (m *Manager) Save(s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.LastModified = time.Now()
	if err := m.primary.Save(s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the session for account. An empty account means DefaultAccount.
func (m *Manager) Load(account string) (*Session, error) {
	if account == "" {
		account = DefaultAccount
	}
	if m.env != nil {
		if s, err := m.env.Load(account); err == nil {
			return s, nil
		}
	}
	return m.primary.Load(account)
}

// Cookie returns the stored cookie for account, or "" when none exists
func (m *Manager) Cookie(account string) (string, error) {
	s, err := m.Load(account)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Cookie, nil
}

// List returns the sessions of the primary store
func (m *Manager) List() ([]*Session, error) {
	return m.primary.List()
}

// Delete removes one session
func (m *Manager) Delete(account string) error {
	if account == "" {
		account = DefaultAccount
	}
	return m.primary.Delete(account)
}

// ConfigDir returns the per-user directory for boardharvest state
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			return "", errors.New("APPDATA not set")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}

	dir := filepath.Join(base, "boardharvest")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Mask hides all but the edges of a secret
func Mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
