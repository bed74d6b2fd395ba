package store

// SchemaVersion is bumped whenever the table layout changes. A version
// mismatch is a destructive migration: local tables are dropped and
// recreated, since the server remains the durable source of truth for
// synced data and dirty records are bounded-staleness by design.
const SchemaVersion = 1

// TasksTableSQL creates the single task table. Provisional records
// carry a temp_id; the primary key itself is swapped for the
// server-issued id on confirmation.
const TasksTableSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY,
    user_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'To Do',
    is_deleted INTEGER NOT NULL DEFAULT 0,
    is_synced INTEGER NOT NULL DEFAULT 0 CHECK(is_synced IN (0, 1)),
    temp_id TEXT,
    created_at TEXT
);
`

// TasksIndexesSQL creates the secondary indexes backing the scans the
// engine needs: per-user reads, dirty-record sweeps, and the
// provisional-record discriminator.
const TasksIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_is_synced ON tasks(is_synced);
CREATE INDEX IF NOT EXISTS idx_tasks_temp_id ON tasks(temp_id);
`

// SchemaVersionTableSQL creates the schema version table for migration tracking
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// DropTablesSQL removes everything but the version table; used by the
// destructive migration path.
const DropTablesSQL = `DROP TABLE IF EXISTS tasks;`

// AllTableSchemas returns all table creation statements in order
func AllTableSchemas() []string {
	return []string{
		TasksTableSQL,
		SchemaVersionTableSQL,
	}
}

// AllIndexSchemas returns all index creation statements
func AllIndexSchemas() []string {
	return []string{
		TasksIndexesSQL,
	}
}
