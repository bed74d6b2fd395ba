package sync

import (
	"context"
	"fmt"

	"todosync/internal/task"
)

// Refresh fetches the authoritative server collection, filters it to
// the given user, and merges it into the store: clean local records
// are replaced wholesale, dirty records are preserved untouched. A
// reconciliation pass follows immediately to flush anything still
// pending.
//
// A fetch failure is returned to the caller, who treats it as
// non-fatal: the store already holds the last known state.
func (r *Reconciler) Refresh(ctx context.Context, userID int64) (*Result, error) {
	if !r.remote.Authenticated() {
		return &Result{Skipped: true}, nil
	}

	serverTasks, err := r.remote.FetchTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch failed: %w", err)
	}

	// The server collection is shared; keep only the current user's
	// records, marked synced.
	var mine []task.Task
	for _, t := range serverTasks {
		if t.UserID == userID {
			mine = append(mine, task.Confirmed(t))
		}
	}

	if err := r.store.ReplaceSnapshot(mine); err != nil {
		return nil, fmt.Errorf("snapshot merge failed: %w", err)
	}

	return r.Reconcile(ctx)
}
