package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"todosync/internal/utils"
)

// Coordinator decides when reconciliation runs: at startup, on an
// Offline-to-Online transition, after a local mutation, and on manual
// request. At most one pass is in flight at a time; a trigger that
// finds one running is simply dropped, since the running pass sweeps
// every dirty record anyway.
type Coordinator struct {
	reconciler *Reconciler
	monitor    Monitor
	userID     int64
	auto       bool

	syncing  atomic.Bool
	shutdown atomic.Bool
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once

	logger *utils.Logger
}

// NewCoordinator wires the trigger policy. auto controls whether local
// mutations opportunistically trigger a pass.
func NewCoordinator(reconciler *Reconciler, monitor Monitor, userID int64, auto bool) *Coordinator {
	return &Coordinator{
		reconciler: reconciler,
		monitor:    monitor,
		userID:     userID,
		auto:       auto,
		stop:       make(chan struct{}),
		logger:     utils.GetLogger(),
	}
}

// Start runs the application-start policy and begins watching for
// connectivity transitions. While online it performs a snapshot
// refresh; a refresh failure falls back to local data and is reported
// as an informational notice, never as a blocking error.
func (c *Coordinator) Start(ctx context.Context) {
	if c.monitor.Online() {
		if _, err := c.reconciler.Refresh(ctx, c.userID); err != nil {
			c.logger.Info("Could not refresh from server, using local data: %v", err)
		}
	}

	c.wg.Add(1)
	go c.watch()
}

// watch reacts to connectivity flips. Going offline needs no network
// action: mutations simply accumulate as dirty records.
func (c *Coordinator) watch() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stop:
			return
		case online, ok := <-c.monitor.Transitions():
			if !ok {
				return
			}
			if online {
				c.logger.Debug("Back online, triggering reconciliation")
				c.trigger()
			}
		}
	}
}

// NotifyMutation triggers an opportunistic fire-and-forget pass after
// a successful local mutation. Offline or with auto sync disabled it
// does nothing; the record stays dirty for a later trigger.
func (c *Coordinator) NotifyMutation() {
	if !c.auto || c.shutdown.Load() {
		return
	}
	if !c.monitor.Online() {
		return
	}
	c.trigger()
}

// trigger launches a background pass unless one is already in flight.
func (c *Coordinator) trigger() {
	if c.shutdown.Load() {
		return
	}
	if !c.syncing.CompareAndSwap(false, true) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.syncing.Store(false)
		c.runPass(context.Background())
	}()
}

// SyncNow runs a reconciliation pass synchronously. It returns false
// without doing anything when a pass is already in flight.
func (c *Coordinator) SyncNow(ctx context.Context) (*Result, bool) {
	if !c.syncing.CompareAndSwap(false, true) {
		return nil, false
	}
	defer c.syncing.Store(false)

	return c.runPass(ctx), true
}

// RefreshNow performs a full snapshot merge plus reconciliation,
// synchronously, under the same in-flight guard.
func (c *Coordinator) RefreshNow(ctx context.Context) (*Result, bool, error) {
	if !c.syncing.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	defer c.syncing.Store(false)

	result, err := c.reconciler.Refresh(ctx, c.userID)
	return result, true, err
}

func (c *Coordinator) runPass(ctx context.Context) *Result {
	result, err := c.reconciler.Reconcile(ctx)
	if err != nil {
		// Local store trouble; the pass aborts but nothing is lost.
		c.logger.Error("Reconciliation pass failed: %v", err)
		return nil
	}

	if result.Created+result.Updated+result.Deleted > 0 {
		c.logger.Debug("Reconciled: %d created, %d updated, %d deleted, %d failed",
			result.Created, result.Updated, result.Deleted, result.Failed)
	}
	return result
}

// Shutdown stops the watcher and waits for any in-flight pass, up to
// the given timeout. Records left dirty are retried on the next run.
func (c *Coordinator) Shutdown(timeout time.Duration) {
	c.shutdown.Store(true)
	c.stopOnce.Do(func() { close(c.stop) })

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		c.logger.Warn("Pending sync did not complete within %v", timeout)
	}
}
