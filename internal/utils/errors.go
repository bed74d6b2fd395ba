package utils

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with a helpful suggestion for the user
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// ErrTaskNotFound creates an error when a task is not found
func ErrTaskNotFound(id int64) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("no task with id %d", id),
		Suggestion: "Run 'todosync list' to see your tasks",
	}
}

// ErrNotLoggedIn creates an error when no session or token is available
func ErrNotLoggedIn() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("not logged in"),
		Suggestion: "Run 'todosync login --user-id <id> --username <name>' and provide a token via TODOSYNC_TOKEN or the keyring",
	}
}

// ErrInvalidStatus creates an error when a status outside the closed set is given
func ErrInvalidStatus(status string, valid []string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid status '%s'", status),
		Suggestion: fmt.Sprintf("Use one of: %s", strings.Join(valid, ", ")),
	}
}

// ErrServerUnreachable creates an error when the remote API cannot be reached
func ErrServerUnreachable(reason string) error {
	suggestion := "Check your internet connection and try again; local changes are kept and will sync later"
	if strings.Contains(reason, "refused") {
		suggestion = "Check if the server is running and accessible; local changes are kept and will sync later"
	} else if strings.Contains(reason, "timeout") {
		suggestion = "The server may be slow or unreachable. Local changes are kept and will sync later"
	}

	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("could not reach server: %s", reason),
		Suggestion: suggestion,
	}
}
