// Package session persists the logged-in user's identity between runs.
// The user id filters the shared server collection down to the current
// user's records during a snapshot merge.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSession is returned when no user has logged in.
var ErrNoSession = errors.New("no active session")

// User is the persisted identity blob
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// GetStateDir returns the XDG-compliant state directory path
func GetStateDir() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	stateDir = filepath.Join(stateDir, "todosync")
	return stateDir, os.MkdirAll(stateDir, 0755)
}

func sessionFile() (string, error) {
	dir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Load reads the persisted session, or ErrNoSession if none exists.
func Load() (*User, error) {
	path, err := sessionFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if u.ID == 0 {
		return nil, ErrNoSession
	}
	return &u, nil
}

// Save persists the session.
func Save(u User) error {
	if u.ID == 0 {
		return fmt.Errorf("user id is required")
	}

	path, err := sessionFile()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. A missing session is not an
// error.
func Clear() error {
	path, err := sessionFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
