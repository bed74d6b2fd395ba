package task

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Task status lifecycle values. The set is closed; anything else is
// rejected at the edge before it reaches the store or the server.
const (
	StatusTodo       = "To Do"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Sync marker values for Task.IsSynced.
const (
	SyncPending = 0
	SyncDone    = 1
)

// Task is the unit of synchronization. Before server acknowledgment the
// ID is a client-generated provisional value and TempID is set; after
// acknowledgment the ID is the server-issued one and TempID is empty.
type Task struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"oneof='To Do' 'In Progress' 'Completed'"`
	IsDeleted   bool   `json:"is_deleted"`
	IsSynced    int    `json:"is_synced"`
	TempID      string `json:"temp_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Dirty reports whether the task has local state not yet confirmed by
// the server.
func (t Task) Dirty() bool {
	return t.IsSynced == SyncPending
}

// Provisional reports whether the task was created locally and never
// acknowledged by the server. The TempID marker is the discriminator
// between the create and update/delete reconciliation paths.
func (t Task) Provisional() bool {
	return t.TempID != ""
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func taskValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the task's user-editable fields against the closed
// status set and required-field rules.
func (t Task) Validate() error {
	if err := taskValidator().Struct(t); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	return nil
}

// ValidStatus reports whether s is one of the closed lifecycle labels.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Statuses returns the closed lifecycle set in display order.
func Statuses() []string {
	return []string{StatusTodo, StatusInProgress, StatusCompleted}
}
