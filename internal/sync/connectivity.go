package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Monitor is the connectivity capability the trigger policy depends
// on: a current-state check plus transition notifications. Tests
// substitute a fake; production uses ProbeMonitor.
type Monitor interface {
	// Online reports the last observed connectivity state.
	Online() bool
	// Transitions delivers the new state after each Offline/Online
	// flip. The channel is closed when the monitor stops.
	Transitions() <-chan bool
}

// Prober is anything that can cheaply check server reachability; the
// API client satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// probeTimeout bounds a single reachability check so it never blocks a
// caller noticeably.
const probeTimeout = 3 * time.Second

// ProbeMonitor derives connectivity state by periodically pinging the
// server. It starts offline until the first probe succeeds.
type ProbeMonitor struct {
	prober   Prober
	interval time.Duration

	online   atomic.Bool
	ch       chan bool
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewProbeMonitor creates a monitor probing at the given interval.
func NewProbeMonitor(prober Prober, interval time.Duration) *ProbeMonitor {
	return &ProbeMonitor{
		prober:   prober,
		interval: interval,
		ch:       make(chan bool, 1),
		stop:     make(chan struct{}),
	}
}

// Start begins probing in the background. The first probe runs
// immediately so startup sees a fresh state.
func (m *ProbeMonitor) Start() {
	m.probe()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.probe()
			}
		}
	}()
}

func (m *ProbeMonitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	online := m.prober.Ping(ctx) == nil
	if m.online.Swap(online) != online {
		// State flipped; notify without ever blocking the prober.
		select {
		case m.ch <- online:
		default:
		}
	}
}

// Online reports the last observed connectivity state.
func (m *ProbeMonitor) Online() bool {
	return m.online.Load()
}

// Transitions delivers connectivity flips.
func (m *ProbeMonitor) Transitions() <-chan bool {
	return m.ch
}

// Stop halts probing and closes the transitions channel.
func (m *ProbeMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
		close(m.ch)
	})
}
