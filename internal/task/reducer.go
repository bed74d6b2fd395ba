package task

// Pure transitions over Task values. Mutation commands produce the next
// record here and the operations layer commits it to the store, so the
// lifecycle is testable without a database.

// NewLocal returns an optimistically created task: provisional primary
// key, correlation token set, pending sync.
func NewLocal(provisionalID int64, tempID string, userID int64, title, description, status string) Task {
	return Task{
		ID:          provisionalID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		IsDeleted:   false,
		IsSynced:    SyncPending,
		TempID:      tempID,
	}
}

// Edited applies a content edit. Any edit makes the record dirty again;
// identity fields are untouched.
func Edited(t Task, title, description, status string) Task {
	t.Title = title
	t.Description = description
	t.Status = status
	t.IsSynced = SyncPending
	return t
}

// MarkDeleted turns the task into a tombstone awaiting remote deletion.
// Callers must not use this for provisional tasks: those are removed
// from the store outright since the server never knew about them.
func MarkDeleted(t Task) Task {
	t.IsDeleted = true
	t.IsSynced = SyncPending
	return t
}

// Confirmed returns the server-acknowledged form of a task: the
// server-issued record marked synced, with no correlation token.
func Confirmed(server Task) Task {
	server.IsSynced = SyncDone
	server.TempID = ""
	server.IsDeleted = false
	return server
}
