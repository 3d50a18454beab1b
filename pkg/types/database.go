package types

import "errors"

// AllTasks passed to Database.Read selects every task.
const AllTasks = 0

// Database is the storage contract shared by every backend.
// Implementations own their dataset; nothing is shared across instances.
type Database interface {
	// Create assigns the next id to task, stores it and returns the id.
	// Ids are max(existing)+1, or 1 for an empty dataset, and are never
	// handed out twice by the same instance.
	Create(task Task) (int, error)

	// Read returns every task when id is AllTasks, otherwise the task with
	// that id. A missing id yields an empty slice, not an error.
	Read(id int) ([]Task, error)

	// Update replaces the task with the given id in place and returns the
	// stored task. Updating a missing id stores nothing.
	Update(id int, task Task) (Task, error)

	// Delete removes the task with the given id and returns the id.
	// Returns ErrNotFound if no task has that id.
	Delete(id int) (int, error)

	// Close releases the backend. Later calls return ErrDatabaseClosed.
	Close() error
}

// Storage faults. These mean the data on disk cannot be trusted or
// upgraded automatically; callers should stop rather than guess.
var (
	ErrUnknownVersion  = errors.New("unknown or unreadable database version")
	ErrMigrationPath   = errors.New("no migration path to the current database version")
	ErrCorruptDatabase = errors.New("corrupt database file")
)

// Caller errors.
var (
	ErrNotFound       = errors.New("task not found")
	ErrInvalidID      = errors.New("invalid task ID")
	ErrInvalidTitle   = errors.New("invalid task title")
	ErrInvalidStatus  = errors.New("invalid task status")
	ErrDatabaseClosed = errors.New("database is closed")
)

// NextID returns the id for a new task: one more than the largest of
// highWater and every id in tasks, so 1 for an empty dataset. Backends
// keep highWater as the largest id they ever assigned, which stops a
// deleted id from being handed out again.
func NextID(tasks []Task, highWater int) int {
	top := highWater
	for _, t := range tasks {
		if t.ID > top {
			top = t.ID
		}
	}
	return top + 1
}
