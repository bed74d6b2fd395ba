package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"todosync/internal/remote"
	"todosync/internal/store"
	"todosync/internal/task"
)

// fakeRemote is an in-memory stand-in for the task API. It mirrors the
// client contract: delete of a missing task succeeds (the client maps
// 404 to success), create returns the server-authoritative record.
type fakeRemote struct {
	mu     sync.Mutex
	noAuth bool

	tasks  map[int64]task.Task
	nextID int64

	failFetch  bool
	failCreate bool
	failUpdate bool
	failDelete bool

	fetchCalls  int
	createCalls int
	updateCalls int
	deleteCalls int

	// When set, CreateTask blocks until the channel is closed.
	createGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tasks:  make(map[int64]task.Task),
		nextID: 42,
	}
}

func (f *fakeRemote) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.noAuth
}

func (f *fakeRemote) FetchTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCalls++
	if f.failFetch {
		return nil, fmt.Errorf("simulated fetch failure")
	}

	var all []task.Task
	for _, t := range f.tasks {
		all = append(all, t)
	}
	return all, nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, req remote.CreateTaskRequest) (task.Task, error) {
	f.mu.Lock()
	f.createCalls++
	fail := f.failCreate
	gate := f.createGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return task.Task{}, &remote.APIError{StatusCode: 500, Body: "simulated"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	created := task.Task{
		ID:          f.nextID,
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	f.nextID++
	f.tasks[created.ID] = created
	return created, nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id int64, req remote.UpdateTaskRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if f.failUpdate {
		return &remote.APIError{StatusCode: 500, Body: "simulated"}
	}

	t, ok := f.tasks[id]
	if !ok {
		return &remote.APIError{StatusCode: 404, Body: "not found"}
	}
	t.Title = req.Title
	t.Description = req.Description
	t.Status = req.Status
	f.tasks[id] = t
	return nil
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls++
	if f.failDelete {
		return &remote.APIError{StatusCode: 500, Body: "simulated"}
	}
	// Missing task deletes succeed, like the 404 path of the client.
	delete(f.tasks, id)
	return nil
}

// Helper to create a reconciler over a real temp-file store
func createTestReconciler(t *testing.T) (*Reconciler, *store.Store, *fakeRemote) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	rem := newFakeRemote()
	return NewReconciler(st, rem), st, rem
}

func putTask(t *testing.T, st *store.Store, tk task.Task) {
	t.Helper()
	if err := st.Put(tk); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
}

func TestReconcileProvisionalDeleteMakesNoRemoteCalls(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	putTask(t, st, task.Task{
		ID: 170000000000, UserID: 3, Title: "never synced", Status: task.StatusTodo,
		TempID: "t1", IsDeleted: true, IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.Deleted != 1 {
		t.Errorf("Expected 1 deletion, got %d", result.Deleted)
	}
	if rem.deleteCalls+rem.createCalls+rem.updateCalls != 0 {
		t.Errorf("Expected zero remote calls, got d=%d c=%d u=%d",
			rem.deleteCalls, rem.createCalls, rem.updateCalls)
	}

	all, _ := st.All()
	if len(all) != 0 {
		t.Errorf("Expected provisional tombstone removed, got %+v", all)
	}
}

func TestReconcileCreateSwapsProvisionalID(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	putTask(t, st, task.Task{
		ID: 170000000000, UserID: 3, Title: "Buy milk", Description: "2L",
		Status: task.StatusTodo, TempID: "t1", IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Created != 1 || result.Failed != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}

	all, err := st.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected exactly one record after swap, got %d", len(all))
	}

	got := all[0]
	if got.ID != 42 {
		t.Errorf("Expected server-issued id 42, got %d", got.ID)
	}
	if got.TempID != "" {
		t.Errorf("Expected correlation token cleared, got %q", got.TempID)
	}
	if got.IsSynced != task.SyncDone {
		t.Error("Expected record marked synced")
	}
	if rem.createCalls != 1 {
		t.Errorf("Expected 1 create call, got %d", rem.createCalls)
	}
}

func TestReconcileUpdateFlipsSyncedInPlace(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	rem.tasks[7] = task.Task{ID: 7, UserID: 3, Title: "A", Status: task.StatusTodo}
	putTask(t, st, task.Task{
		ID: 7, UserID: 3, Title: "B", Status: task.StatusInProgress,
		IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("Expected 1 update, got %+v", result)
	}

	got, err := st.Get(7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.IsSynced != task.SyncDone || got.Title != "B" {
		t.Errorf("Expected synced record with local content, got %+v", got)
	}
	if rem.tasks[7].Title != "B" {
		t.Errorf("Expected remote updated, got %+v", rem.tasks[7])
	}
}

func TestReconcileDeleteRemovesConfirmedTombstone(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	rem.tasks[7] = task.Task{ID: 7, UserID: 3, Title: "A", Status: task.StatusTodo}
	putTask(t, st, task.Task{
		ID: 7, UserID: 3, Title: "A", Status: task.StatusTodo,
		IsDeleted: true, IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("Expected 1 deletion, got %+v", result)
	}

	all, _ := st.All()
	if len(all) != 0 {
		t.Errorf("Expected tombstone removed after confirmation, got %+v", all)
	}
	if _, ok := rem.tasks[7]; ok {
		t.Error("Expected remote task deleted")
	}
}

func TestReconcileDeleteOfUnknownRemoteSucceeds(t *testing.T) {
	r, st, _ := createTestReconciler(t)

	// Remote never had the task; the client reports 404 as success.
	putTask(t, st, task.Task{
		ID: 7, UserID: 3, Title: "A", Status: task.StatusTodo,
		IsDeleted: true, IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Deleted != 1 || result.Failed != 0 {
		t.Errorf("Expected clean deletion, got %+v", result)
	}
}

func TestReconcileCreateFailureLeavesRecordForRetry(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	rem.failCreate = true
	putTask(t, st, task.Task{
		ID: 170000000000, UserID: 3, Title: "Buy milk", Status: task.StatusTodo,
		TempID: "t1", IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Failed != 1 || result.Created != 0 {
		t.Errorf("Expected 1 failure, got %+v", result)
	}

	got, err := st.Get(170000000000)
	if err != nil {
		t.Fatalf("Expected record unchanged: %v", err)
	}
	if got.TempID != "t1" || got.IsSynced != task.SyncPending {
		t.Errorf("Expected record left dirty with token intact, got %+v", got)
	}

	// The next trigger is the retry mechanism.
	rem.mu.Lock()
	rem.failCreate = false
	rem.mu.Unlock()

	result, err = r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Retry pass failed: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("Expected retry to succeed, got %+v", result)
	}

	all, _ := st.All()
	if len(all) != 1 || all[0].ID != 42 {
		t.Errorf("Expected confirmed record after retry, got %+v", all)
	}
}

func TestReconcileOneFailureDoesNotAbortOthers(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	rem.failUpdate = true
	rem.tasks[7] = task.Task{ID: 7, UserID: 3, Title: "A", Status: task.StatusTodo}

	// One doomed update, one viable create.
	putTask(t, st, task.Task{
		ID: 7, UserID: 3, Title: "B", Status: task.StatusTodo, IsSynced: task.SyncPending,
	})
	putTask(t, st, task.Task{
		ID: 170000000000, UserID: 3, Title: "new", Status: task.StatusTodo,
		TempID: "t1", IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.Failed != 1 {
		t.Errorf("Expected 1 failure, got %+v", result)
	}
	if result.Created != 1 {
		t.Errorf("Expected the create to proceed despite the failed update, got %+v", result)
	}
}

func TestReconcileWithoutCredentialIsNoOp(t *testing.T) {
	r, st, rem := createTestReconciler(t)

	rem.noAuth = true
	putTask(t, st, task.Task{
		ID: 170000000000, UserID: 3, Title: "x", Status: task.StatusTodo,
		TempID: "t1", IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Expected no-op, got error %v", err)
	}
	if !result.Skipped {
		t.Error("Expected pass to be marked skipped")
	}
	if rem.createCalls != 0 {
		t.Errorf("Expected zero remote calls, got %d", rem.createCalls)
	}

	got, err := st.Get(170000000000)
	if err != nil || got.IsSynced != task.SyncPending {
		t.Errorf("Expected record untouched, got %+v (%v)", got, err)
	}
}

// faultStore wraps the real store and fails the id swap without
// touching the database, simulating an interruption between the remote
// call succeeding and the local transaction committing.
type faultStore struct {
	*store.Store
	failSwap bool
}

func (f *faultStore) SwapConfirmed(provisionalID int64, confirmed task.Task) error {
	if f.failSwap {
		return fmt.Errorf("simulated crash before commit")
	}
	return f.Store.SwapConfirmed(provisionalID, confirmed)
}

func TestReconcileIDSwapAtomicUnderFault(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	fs := &faultStore{Store: st, failSwap: true}
	rem := newFakeRemote()
	r := NewReconciler(fs, rem)

	putTask(t, st, task.Task{
		ID: 170000000000, UserID: 3, Title: "Buy milk", Status: task.StatusTodo,
		TempID: "t1", IsSynced: task.SyncPending,
	})

	result, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("Expected the interrupted swap to count as failed, got %+v", result)
	}

	// Either the provisional row or the confirmed row, never both and
	// never neither. With the commit interrupted, the provisional row
	// must still be there.
	all, _ := st.All()
	if len(all) != 1 {
		t.Fatalf("Expected exactly one row after interrupted swap, got %d", len(all))
	}
	if all[0].ID != 170000000000 || all[0].TempID != "t1" {
		t.Errorf("Expected the provisional row intact, got %+v", all[0])
	}

	// After restart the record is still dirty and a later pass
	// converges to exactly the confirmed row.
	fs.failSwap = false
	if _, err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("Recovery pass failed: %v", err)
	}

	all, _ = st.All()
	if len(all) != 1 {
		t.Fatalf("Expected exactly one row after recovery, got %d", len(all))
	}
	if all[0].TempID != "" || all[0].IsSynced != task.SyncDone {
		t.Errorf("Expected confirmed row after recovery, got %+v", all[0])
	}
}
