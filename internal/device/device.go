// Package device manages the locally persisted device identity: a generated
// token that binds this machine to a subscription's device quota.
package device

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "accountpro-cli"
	keyringUser    = "device-id"
	fallbackFile   = "device_id"
)

// Store persists a single device identity token for this machine.
type Store interface {
	// Token returns the persisted token, or "" when none has been assigned.
	Token() (string, error)
	// SetToken persists the token for the lifetime of this machine profile.
	SetToken(token string) error
}

// GenerateToken creates a fresh opaque device token.
func GenerateToken() string {
	return uuid.NewString()
}

// KeychainStore keeps the token in the OS keychain, falling back to a file
// under the user config directory when no keychain is available (headless
// environments).
type KeychainStore struct {
	configDir string
}

// NewStore returns the default device identity store.
func NewStore() *KeychainStore {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &KeychainStore{configDir: filepath.Join(dir, "accountpro")}
}

func (s *KeychainStore) Token() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return s.fileToken()
}

func (s *KeychainStore) SetToken(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err == nil {
		return nil
	}
	return s.setFileToken(token)
}

func (s *KeychainStore) fileToken() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.configDir, fallbackFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *KeychainStore) setFileToken(token string) error {
	if err := os.MkdirAll(s.configDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.configDir, fallbackFile), []byte(token+"\n"), 0o600)
}
