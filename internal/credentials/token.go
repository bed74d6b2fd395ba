// Package credentials resolves the bearer token attached to remote
// calls. Absence of a token is not an error anywhere in the engine: it
// gates reconciliation to a no-op.
package credentials

import (
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring entries
	KeyringService = "todosync"

	// KeyringUser is the account name under which the token is stored
	KeyringUser = "api-token"

	// EnvToken is the environment variable fallback
	EnvToken = "TODOSYNC_TOKEN"
)

// Source indicates where the token was found
type Source string

const (
	SourceKeyring Source = "keyring"
	SourceEnv     Source = "env"
	SourceNone    Source = "none"
)

// Token holds a resolved bearer credential
type Token struct {
	Value  string
	Source Source
}

// Resolve attempts to find a bearer token using the priority order:
// keyring first, then the environment. A missing token resolves to
// SourceNone rather than an error.
func Resolve() Token {
	if value, err := keyring.Get(KeyringService, KeyringUser); err == nil && value != "" {
		return Token{Value: value, Source: SourceKeyring}
	}

	if value := os.Getenv(EnvToken); value != "" {
		return Token{Value: value, Source: SourceEnv}
	}

	return Token{Source: SourceNone}
}

// Store saves the token in the OS keyring.
func Store(value string) error {
	if value == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := keyring.Set(KeyringService, KeyringUser, value); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Clear removes the token from the OS keyring. A missing entry is not
// an error.
func Clear() error {
	err := keyring.Delete(KeyringService, KeyringUser)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to remove token from keyring: %w", err)
	}
	return nil
}
