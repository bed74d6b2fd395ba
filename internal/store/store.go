// Package store is the durable local task table: a single SQLite
// database keyed by task id, surviving process restarts, with the
// secondary scans and multi-step transactional writes the
// reconciliation engine depends on.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"todosync/internal/task"
)

// ErrNotFound is returned by Get when no row has the requested id.
var ErrNotFound = errors.New("task not found")

// StoreError represents errors specific to local store operations
type StoreError struct {
	Op  string // Operation that failed
	ID  int64  // Optional: task id if relevant
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("store %s failed for task %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is a durable task table backed by SQLite. All writes are
// visible to subsequent reads from the same process; cross-process
// access to one database file is not a supported configuration.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at path and brings
// the schema to the current version. A version mismatch drops and
// recreates the tables: synced data is re-fetched from the server and
// only unsynced local edits would be lost, which the destructive
// migration accepts.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	// modernc.org/sqlite serializes at the driver level; a single
	// connection avoids table-lock errors between overlapping writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "migrate", Err: err}
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(SchemaVersionTableSQL); err != nil {
		return err
	}

	var current sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&current)
	if err != nil {
		return err
	}

	if current.Valid && current.Int64 != SchemaVersion {
		// Destructive migration: drop and recreate.
		if _, err := s.db.Exec(DropTablesSQL); err != nil {
			return err
		}
		if _, err := s.db.Exec(`DELETE FROM schema_version`); err != nil {
			return err
		}
		current = sql.NullInt64{}
	}

	for _, stmt := range AllTableSchemas() {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	for _, stmt := range AllIndexSchemas() {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	if !current.Valid {
		_, err = s.db.Exec(
			`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`,
			SchemaVersion, time.Now().Unix(),
		)
	}
	return err
}

const taskColumns = `id, user_id, title, description, status, is_deleted, is_synced, temp_id, created_at`

func scanTask(row interface{ Scan(...any) error }) (task.Task, error) {
	var t task.Task
	var deleted int
	var tempID, createdAt sql.NullString

	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&deleted, &t.IsSynced, &tempID, &createdAt)
	if err != nil {
		return t, err
	}

	t.IsDeleted = deleted != 0
	t.TempID = tempID.String
	t.CreatedAt = createdAt.String
	return t, nil
}

func (s *Store) queryTasks(op, where string, args ...any) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, &StoreError{Op: op, Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	return tasks, nil
}

// Get returns the task with the given id, or ErrNotFound.
func (s *Store) Get(id int64) (*task.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Op: "get", ID: id, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &StoreError{Op: "get", ID: id, Err: err}
	}
	return &t, nil
}

// All returns every task in the store.
func (s *Store) All() ([]task.Task, error) {
	return s.queryTasks("all", "")
}

// ByUser returns every task owned by userID.
func (s *Store) ByUser(userID int64) ([]task.Task, error) {
	return s.queryTasks("byUser", "user_id = ?", userID)
}

// BySyncState returns tasks whose is_synced marker equals flag.
func (s *Store) BySyncState(flag int) ([]task.Task, error) {
	return s.queryTasks("bySyncState", "is_synced = ?", flag)
}

// Pending returns the dirty records: everything not yet confirmed by
// the server.
func (s *Store) Pending() ([]task.Task, error) {
	return s.BySyncState(task.SyncPending)
}

func insertTask(e interface {
	Exec(string, ...any) (sql.Result, error)
}, t task.Task) error {
	var tempID any
	if t.TempID != "" {
		tempID = t.TempID
	}
	var createdAt any
	if t.CreatedAt != "" {
		createdAt = t.CreatedAt
	}

	_, err := e.Exec(`
		INSERT OR REPLACE INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, t.Description, t.Status,
		boolToInt(t.IsDeleted), t.IsSynced, tempID, createdAt)
	return err
}

// Put inserts the task, replacing any existing row with the same id.
func (s *Store) Put(t task.Task) error {
	if err := insertTask(s.db, t); err != nil {
		return &StoreError{Op: "put", ID: t.ID, Err: err}
	}
	return nil
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *string
	IsDeleted   *bool
	IsSynced    *int
}

// Patch applies a partial update to the task with the given id,
// leaving all other columns as they are.
func (s *Store) Patch(id int64, p Patch) error {
	var set []string
	var args []any

	if p.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *p.Status)
	}
	if p.IsDeleted != nil {
		set = append(set, "is_deleted = ?")
		args = append(args, boolToInt(*p.IsDeleted))
	}
	if p.IsSynced != nil {
		set = append(set, "is_synced = ?")
		args = append(args, *p.IsSynced)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return &StoreError{Op: "patch", ID: id, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &StoreError{Op: "patch", ID: id, Err: ErrNotFound}
	}
	return nil
}

// MarkSynced flips the sync marker to confirmed, in place.
func (s *Store) MarkSynced(id int64) error {
	synced := task.SyncDone
	return s.Patch(id, Patch{IsSynced: &synced})
}

// Delete removes the row with the given id. Deleting a missing row is
// not an error.
func (s *Store) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return &StoreError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

// Clear removes every task.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM tasks`); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error. Partial
// states are never visible to concurrent reads.
func (s *Store) inTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return &StoreError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: op, Err: err}
	}
	return nil
}

// SwapConfirmed atomically replaces a provisional row with its
// server-confirmed counterpart. Observers see either the provisional
// row or the confirmed one, never both and never neither.
func (s *Store) SwapConfirmed(provisionalID int64, confirmed task.Task) error {
	return s.inTx("swapConfirmed", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, provisionalID); err != nil {
			return err
		}
		return insertTask(tx, confirmed)
	})
}

// ReplaceSnapshot replaces the synced contents of the store with the
// given server records while preserving dirty records untouched. Dirty
// records win when they share an id with a server record, since local
// edits are presumed newer.
func (s *Store) ReplaceSnapshot(server []task.Task) error {
	return s.inTx("replaceSnapshot", func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT `+taskColumns+` FROM tasks WHERE is_synced = ?`, task.SyncPending)
		if err != nil {
			return err
		}

		var dirty []task.Task
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				rows.Close()
				return err
			}
			dirty = append(dirty, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
			return err
		}

		for _, t := range server {
			if err := insertTask(tx, t); err != nil {
				return err
			}
		}
		for _, t := range dirty {
			if err := insertTask(tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
