// Package operations commits optimistic UI mutations: each one runs
// the pure task transition, persists the result, and leaves the
// reconciliation trigger to the caller.
package operations

import (
	"fmt"

	"todosync/internal/ident"
	"todosync/internal/store"
	"todosync/internal/task"
	"todosync/internal/utils"
)

// Create adds a task optimistically: provisional identity, pending
// sync. It succeeds offline; the record waits for the next
// reconciliation trigger.
func Create(st *store.Store, alloc *ident.Allocator, userID int64, title, description, status string) (task.Task, error) {
	if status == "" {
		status = task.StatusTodo
	}
	if !task.ValidStatus(status) {
		return task.Task{}, utils.ErrInvalidStatus(status, task.Statuses())
	}

	t := task.NewLocal(alloc.ProvisionalID(), alloc.CorrelationToken(), userID, title, description, status)
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	if err := st.Put(t); err != nil {
		return task.Task{}, fmt.Errorf("failed to save task locally: %w", err)
	}
	return t, nil
}

// Edit applies a content change to an existing task, marking it dirty.
func Edit(st *store.Store, id int64, title, description, status string) (task.Task, error) {
	existing, err := st.Get(id)
	if err != nil {
		return task.Task{}, utils.ErrTaskNotFound(id)
	}
	if !task.ValidStatus(status) {
		return task.Task{}, utils.ErrInvalidStatus(status, task.Statuses())
	}

	t := task.Edited(*existing, title, description, status)
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	if err := st.Put(t); err != nil {
		return task.Task{}, fmt.Errorf("failed to save task locally: %w", err)
	}
	return t, nil
}

// SetStatus changes only the lifecycle label, keeping other content.
func SetStatus(st *store.Store, id int64, status string) (task.Task, error) {
	existing, err := st.Get(id)
	if err != nil {
		return task.Task{}, utils.ErrTaskNotFound(id)
	}
	return Edit(st, id, existing.Title, existing.Description, status)
}

// Remove deletes a task. A provisional record is removed outright (the
// server never knew about it); anything else becomes a tombstone
// awaiting remote deletion.
func Remove(st *store.Store, id int64) error {
	existing, err := st.Get(id)
	if err != nil {
		return utils.ErrTaskNotFound(id)
	}

	if existing.Provisional() {
		return st.Delete(id)
	}
	return st.Put(task.MarkDeleted(*existing))
}

// List returns the current user's tasks as stored, tombstones
// included; presentation decides what to hide.
func List(st *store.Store, userID int64) ([]task.Task, error) {
	return st.ByUser(userID)
}
