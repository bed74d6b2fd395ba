// Package sync is the offline reconciliation engine: it walks pending
// local mutations, maps each to a remote operation, applies the remote
// result back to the local store, and resolves provisional-to-permanent
// identity swaps.
package sync

import (
	"context"
	"fmt"
	"time"

	"todosync/internal/remote"
	"todosync/internal/task"
	"todosync/internal/utils"
)

// Store is the slice of the local store the engine needs. The concrete
// SQLite store satisfies it; tests substitute wrappers to inject
// faults between the remote call and the local commit.
type Store interface {
	// Pending returns all dirty records (is_synced = 0).
	Pending() ([]task.Task, error)
	// Delete removes a row; deleting a missing row is not an error.
	Delete(id int64) error
	// MarkSynced flips the sync marker to confirmed in place.
	MarkSynced(id int64) error
	// SwapConfirmed atomically replaces a provisional row with its
	// server-confirmed counterpart.
	SwapConfirmed(provisionalID int64, confirmed task.Task) error
	// ReplaceSnapshot swaps in server records while preserving dirty
	// rows, dirty winning on id collision.
	ReplaceSnapshot(server []task.Task) error
}

// Remote is the slice of the API client the engine needs.
type Remote interface {
	Authenticated() bool
	FetchTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, req remote.CreateTaskRequest) (task.Task, error)
	UpdateTask(ctx context.Context, id int64, req remote.UpdateTaskRequest) error
	DeleteTask(ctx context.Context, id int64) error
}

// Reconciler synchronizes dirty local records with the remote API.
type Reconciler struct {
	store  Store
	remote Remote
	logger *utils.Logger
}

// NewReconciler creates a reconciler over the given store and remote.
func NewReconciler(store Store, rem Remote) *Reconciler {
	return &Reconciler{
		store:  store,
		remote: rem,
		logger: utils.GetLogger(),
	}
}

// Result contains statistics about one reconciliation pass
type Result struct {
	Created  int  // provisional records confirmed by the server
	Updated  int  // edits acknowledged by the server
	Deleted  int  // tombstones resolved (including local-only removals)
	Failed   int  // records left dirty for the next pass
	Skipped  bool // pass was a no-op (no credential)
	Duration time.Duration
}

// Pending reports whether any record was left unsynchronized.
func (r *Result) Pending() bool {
	return r.Skipped || r.Failed > 0
}

// Reconcile performs one pass over all dirty records. Records are
// processed independently: one record's failure is logged, counted,
// and never aborts the rest. Without a bearer credential the pass is a
// no-op, not an error; the next trigger is the retry mechanism.
func (r *Reconciler) Reconcile(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	result := &Result{}

	if !r.remote.Authenticated() {
		result.Skipped = true
		result.Duration = time.Since(startTime)
		return result, nil
	}

	pending, err := r.store.Pending()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending records: %w", err)
	}

	for _, t := range pending {
		if err := r.reconcileOne(ctx, t, result); err != nil {
			result.Failed++
			r.logger.Warn("Failed to sync task %d: %v", t.ID, err)
		}
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// reconcileOne maps a single dirty record to its remote operation.
// Deletion outranks edit; the correlation token discriminates create
// from update.
func (r *Reconciler) reconcileOne(ctx context.Context, t task.Task, result *Result) error {
	switch {
	case t.IsDeleted:
		return r.reconcileDelete(ctx, t, result)
	case t.Provisional():
		return r.reconcileCreate(ctx, t, result)
	default:
		return r.reconcileUpdate(ctx, t, result)
	}
}

func (r *Reconciler) reconcileDelete(ctx context.Context, t task.Task, result *Result) error {
	if t.Provisional() {
		// The server never knew about this record; no remote call.
		if err := r.store.Delete(t.ID); err != nil {
			return err
		}
		result.Deleted++
		return nil
	}

	// The client treats 404 as success: absent on the server either way.
	if err := r.remote.DeleteTask(ctx, t.ID); err != nil {
		return fmt.Errorf("remote delete: %w", err)
	}
	if err := r.store.Delete(t.ID); err != nil {
		return err
	}
	result.Deleted++
	return nil
}

func (r *Reconciler) reconcileCreate(ctx context.Context, t task.Task, result *Result) error {
	created, err := r.remote.CreateTask(ctx, remote.CreateTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		UserID:      t.UserID,
	})
	if err != nil {
		return fmt.Errorf("remote create: %w", err)
	}

	// The id swap must be atomic: a duplicate or orphaned provisional
	// row would survive an interruption between delete and insert.
	if err := r.store.SwapConfirmed(t.ID, task.Confirmed(created)); err != nil {
		return err
	}
	result.Created++
	return nil
}

func (r *Reconciler) reconcileUpdate(ctx context.Context, t task.Task, result *Result) error {
	err := r.remote.UpdateTask(ctx, t.ID, remote.UpdateTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	})
	if err != nil {
		return fmt.Errorf("remote update: %w", err)
	}

	if err := r.store.MarkSynced(t.ID); err != nil {
		return err
	}
	result.Updated++
	return nil
}
