// Package sqlite implements a todo backend stored in a SQLite database.
// Unlike the file backend it has a single schema and no migrations.
package sqlite

// FileName is the database file created inside the data directory.
const FileName = "todo.sqlite"

// AUTOINCREMENT keeps sqlite from handing out the id of a deleted row
// again, even across restarts.
const createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    created_at TEXT NOT NULL,
    status TEXT NOT NULL,
    completed_at TEXT NOT NULL DEFAULT '',
    auto INTEGER NOT NULL DEFAULT 0
);`

const selectTasks = "SELECT id, title, created_at, status, completed_at, auto FROM tasks"
