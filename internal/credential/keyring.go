// Package credential reads and writes archive passwords in the
// operating system keyring.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/listmirror/internal/model"
)

const serviceName = "listmirror"

// Resolve builds the login credentials for a list. An inline password
// wins over a keyring lookup; a list without auth settings resolves to
// nil credentials.
func Resolve(l model.List) (*model.Credentials, error) {
	if !l.NeedsAuth() {
		return nil, nil
	}

	password := l.Password
	if password == "" && l.PasswordKey != "" {
		var err error
		password, err = Get(l.PasswordKey)
		if err != nil {
			return nil, fmt.Errorf("resolving password for list %s: %w", l.Name, err)
		}
	}

	return &model.Credentials{
		Username: l.Username,
		Password: password,
	}, nil
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/listmirror/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("listmirror-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
