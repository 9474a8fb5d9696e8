package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const apiKeyItem = "gemini-api-key"

// SecretStore persists the API key outside the config file.
type SecretStore interface {
	APIKey() (string, error)
	SetAPIKey(key string) error
	DeleteAPIKey() error
}

// KeyringStore keeps the API key in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

var _ SecretStore = (*KeyringStore)(nil)

// NewKeyringStore opens the system keyring.
func NewKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// APIKey returns the stored key.
func (k *KeyringStore) APIKey() (string, error) {
	item, err := k.ring.Get(apiKeyItem)
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// SetAPIKey stores key.
func (k *KeyringStore) SetAPIKey(key string) error {
	return k.ring.Set(keyring.Item{
		Key:   apiKeyItem,
		Data:  []byte(key),
		Label: "bananaboard Gemini API key",
	})
}

// DeleteAPIKey removes the stored key.
func (k *KeyringStore) DeleteAPIKey() error {
	if err := k.ring.Remove(apiKeyItem); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// APIKeyEnv lists the environment variables checked for the key, in order.
var APIKeyEnv = []string{"GEMINI_API_KEY", "API_KEY"}

// ResolveAPIKey finds the API key: environment first, then the secret store,
// then the config file. store may be nil. The key is returned as is.
func ResolveAPIKey(cfg *Config, store SecretStore) string {
	return resolveAPIKey(cfg, store, os.Getenv)
}

func resolveAPIKey(cfg *Config, store SecretStore, getenv func(string) string) string {
	for _, name := range APIKeyEnv {
		if v := getenv(name); v != "" {
			return v
		}
	}
	if store != nil {
		if v, err := store.APIKey(); err == nil && v != "" {
			return v
		}
	}
	if cfg != nil {
		return cfg.APIKey
	}
	return ""
}
