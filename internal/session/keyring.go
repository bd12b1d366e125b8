package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used for keyring entries
	keyringService = "bidmatch"

	// keyringTimeout is the timeout for keyring operations
	keyringTimeout = 5 * time.Second
)

// Vault keeps the bearer token outside the local database.
type Vault interface {
	Set(key, token string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// KeyringError represents an error during keyring operations
type KeyringError struct {
	Operation string
	Err       error
}

func (e *KeyringError) Error() string {
	return fmt.Sprintf("keyring %s failed: %v", e.Operation, e.Err)
}

func (e *KeyringError) Unwrap() error {
	return e.Err
}

// KeyringVault stores tokens in the system keyring. Every call is bounded
// by a timeout since some keyring backends block waiting for an unlock
// prompt.
type KeyringVault struct{}

// keyringKey generates a consistent key format for storing tokens
func keyringKey(host string) string {
	return fmt.Sprintf("token:%s", host)
}

// Set stores a token in the system keyring with timeout
func (KeyringVault) Set(host, token string) error {
	_, err := withTimeout("set", func() (string, error) {
		return "", keyring.Set(keyringService, keyringKey(host), token)
	})

	return err
}

// Get retrieves a token from the system keyring with timeout. A missing
// entry is not an error.
func (KeyringVault) Get(host string) (string, error) {
	token, err := withTimeout("get", func() (string, error) {
		return keyring.Get(keyringService, keyringKey(host))
	})
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}

	return token, err
}

// Delete removes a token from the system keyring with timeout
func (KeyringVault) Delete(host string) error {
	_, err := withTimeout("delete", func() (string, error) {
		return "", keyring.Delete(keyringService, keyringKey(host))
	})

	// Ignore "not found" errors when deleting
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}

	return err
}

func withTimeout(op string, fn func() (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), keyringTimeout)
	defer cancel()

	type result struct {
		value string
		err   error
	}

	resultCh := make(chan result, 1)

	go func() {
		v, err := fn()
		resultCh <- result{value: v, err: err}
	}()

	select {
	case r := <-resultCh:
		if r.err != nil {
			return "", &KeyringError{Operation: op, Err: r.err}
		}

		return r.value, nil
	case <-ctx.Done():
		return "", &KeyringError{Operation: op, Err: ctx.Err()}
	}
}

// KeyringAvailable checks if the system keyring is available
func KeyringAvailable() bool {
	testKey := "__bidmatch_keyring_test__"

	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}

	_ = keyring.Delete(keyringService, testKey)

	return true
}
