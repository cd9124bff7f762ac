// Package credential keeps secrets such as the Telegram bot token in the OS
// keyring instead of the config file.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "taskrecur"

// TelegramTokenKey is the keyring key holding the Telegram bot token.
const TelegramTokenKey = "telegram-bot-token"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes credentials in a keyring.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open opens the system keyring for taskrecur. The encrypted file backend
// under ~/.config/taskrecur/credentials is the fallback when no native
// keychain is available.
func Open() (*Store, error) {
	dir := "credentials"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", serviceName, "credentials")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	if value == "" {
		return fmt.Errorf("setting credential %q: empty value", key)
	}
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Removing a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
