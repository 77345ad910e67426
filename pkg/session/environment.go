package session

import (
	"errors"
	"os"
	"time"
)

const (
	envSession   = "BOARDHARVEST_SESSION"
	envUserAgent = "BOARDHARVEST_USER_AGENT"
)

// EnvironmentStore exposes BOARDHARVEST_SESSION as a read-only session
// that answers for every account name
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-backed store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Save is not supported
func (e *EnvironmentStore) Save(*Session) error {
	return errors.New("environment store is read-only")
}

// Load returns the environment session under the requested name
func (e *EnvironmentStore) Load(account string) (*Session, error) {
	cookie := os.Getenv(envSession)
	if cookie == "" {
		return nil, ErrNotFound
	}
	if account == "" {
		account = DefaultAccount
	}
	return &Session{
		Account:      account,
		Cookie:       cookie,
		UserAgent:    os.Getenv(envUserAgent),
		LastModified: time.Now(),
	}, nil
}

// List returns the environment session, if set
func (e *EnvironmentStore) List() ([]*Session, error) {
	s, err := e.Load(DefaultAccount)
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{s}, nil
}

// Delete is not supported
func (e *EnvironmentStore) Delete(string) error {
	return errors.New("environment store is read-only")
}
