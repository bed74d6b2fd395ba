// Package app owns the lifecycle of the engine's pieces: the store,
// the API client, the connectivity monitor, and the coordinator are
// constructed here and injected explicitly, never reached through
// module-level singletons.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todosync/internal/config"
	"todosync/internal/credentials"
	"todosync/internal/ident"
	"todosync/internal/remote"
	"todosync/internal/session"
	"todosync/internal/store"
	syncer "todosync/internal/sync"
)

// shutdownTimeout bounds how long Close waits for an in-flight pass.
// Anything left dirty is retried on the next run.
const shutdownTimeout = 10 * time.Second

// App holds the wired application state
type App struct {
	Config      *config.Config
	Store       *store.Store
	Remote      *remote.Client
	Monitor     *syncer.ProbeMonitor
	Coordinator *syncer.Coordinator
	Alloc       *ident.Allocator

	// User is nil when nobody is logged in; mutation commands require
	// it, reconciliation silently no-ops without it.
	User *session.User
}

// New wires an App from the config at configPath (empty means the
// default location).
func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	token := credentials.Resolve()
	client := remote.NewClient(cfg.Server.URL, token.Value)

	user, err := session.Load()
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		st.Close()
		return nil, err
	}

	var userID int64
	if user != nil {
		userID = user.ID
	}

	monitor := syncer.NewProbeMonitor(client, time.Duration(cfg.Sync.ProbeInterval)*time.Second)
	monitor.Start()

	reconciler := syncer.NewReconciler(st, client)
	coordinator := syncer.NewCoordinator(reconciler, monitor, userID, cfg.Sync.Auto)

	return &App{
		Config:      cfg,
		Store:       st,
		Remote:      client,
		Monitor:     monitor,
		Coordinator: coordinator,
		Alloc:       ident.NewAllocator(),
		User:        user,
	}, nil
}

// Start runs the application-start policy: snapshot refresh while
// online, local data as-is otherwise.
func (a *App) Start(ctx context.Context) {
	a.Coordinator.Start(ctx)
}

// LoggedIn reports whether a user session exists.
func (a *App) LoggedIn() bool {
	return a.User != nil
}

// Online reports the last observed connectivity state.
func (a *App) Online() bool {
	return a.Monitor.Online()
}

// Close waits briefly for in-flight work and releases resources.
func (a *App) Close() {
	a.Coordinator.Shutdown(shutdownTimeout)
	a.Monitor.Stop()
	a.Store.Close()
}
