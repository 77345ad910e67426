package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "boardharvest"
	keyringPrefix  = "pinterest_"
	keyringIndex   = "index"
)

// KeyringStore keeps sessions in the system keychain. go-keyring cannot
// enumerate entries, so an index entry tracks the stored account names.
type KeyringStore struct{}

// NewKeyringStore probes the keychain and fails when it is unusable
func NewKeyringStore() (*KeyringStore, error) {
	probe := "probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)
	return &KeyringStore{}, nil
}

// Save writes one session as JSON
func (k *KeyringStore) Save(s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+s.Account, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return k.updateIndex(func(names map[string]bool) { names[s.Account] = true })
}

// Load reads one session
func (k *KeyringStore) Load(account string) (*Session, error) {
	if account == "" {
		return nil, ErrInvalid
	}
	data, err := keyring.Get(keyringService, keyringPrefix+account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from keyring: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// List returns every indexed session that still loads
func (k *KeyringStore) List() ([]*Session, error) {
	names, err := k.index()
	if err != nil {
		return nil, err
	}
	sessions := make([]*Session, 0, len(names))
	for name := range names {
		if s, err := k.Load(name); err == nil {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

// Delete removes one session
func (k *KeyringStore) Delete(account string) error {
	if account == "" {
		return ErrInvalid
	}
	err := keyring.Delete(keyringService, keyringPrefix+account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return k.updateIndex(func(names map[string]bool) { delete(names, account) })
}

func (k *KeyringStore) index() (map[string]bool, error) {
	names := make(map[string]bool)
	data, err := keyring.Get(keyringService, keyringIndex)
	if errors.Is(err, keyring.ErrNotFound) {
		return names, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	for _, n := range list {
		names[n] = true
	}
	return names, nil
}

func (k *KeyringStore) updateIndex(mutate func(map[string]bool)) error {
	names, err := k.index()
	if err != nil {
		return err
	}
	mutate(names)

	list := make([]string, 0, len(names))
	for n := range names {
		list = append(list, n)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to write keyring index: %w", err)
	}
	return nil
}
