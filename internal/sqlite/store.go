package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tpsoftworks/todo/pkg/types"
)

// Compile-time interface check: Store must implement Database.
var _ types.Database = (*Store)(nil)

// Store serves tasks from the tasks table of a SQLite database.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) dir/todo.sqlite. A nil logger uses
// slog.Default().
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One writer; keeps an in-process Store from racing itself.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTasks); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path, logger: logger.With("db", path)}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Create inserts the task and returns the id sqlite assigned.
func (s *Store) Create(task types.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return 0, types.ErrDatabaseClosed
	}
	task, err := types.PrepareNew(task, time.Now())
	if err != nil {
		return 0, err
	}

	res, err := s.db.Exec(
		"INSERT INTO tasks (title, created_at, status, completed_at, auto) VALUES (?, ?, ?, ?, ?)",
		task.Title, task.CreatedAt, string(task.Status), task.CompletedAt, task.Auto,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new task id: %w", err)
	}
	s.logger.Debug("created task", "id", id, "title", task.Title)
	return int(id), nil
}

// Read returns every task in id order, or the task with the given id.
func (s *Store) Read(id int) ([]types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, types.ErrDatabaseClosed
	}

	var (
		rows *sql.Rows
		err  error
	)
	if id == types.AllTasks {
		rows, err = s.db.Query(selectTasks + " ORDER BY id")
	} else {
		rows, err = s.db.Query(selectTasks+" WHERE id = ?", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		t, err := hydrateTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// hydrateTask converts a tasks row into a Task.
func hydrateTask(rows *sql.Rows) (types.Task, error) {
	var (
		t      types.Task
		status string
	)
	if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &status, &t.CompletedAt, &t.Auto); err != nil {
		return types.Task{}, fmt.Errorf("scanning task: %w", err)
	}
	st, err := types.ParseStatus(status)
	if err != nil {
		return types.Task{}, fmt.Errorf("%w: task %d: status %q", types.ErrCorruptDatabase, t.ID, status)
	}
	t.Status = st
	return t, nil
}

// Update rewrites the row with the given id. Unknown ids change nothing.
func (s *Store) Update(id int, task types.Task) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.Task{}, types.ErrDatabaseClosed
	}
	if id <= 0 {
		return types.Task{}, types.ErrInvalidID
	}
	if err := task.Validate(); err != nil {
		return types.Task{}, err
	}
	task.ID = id

	res, err := s.db.Exec(
		"UPDATE tasks SET title = ?, created_at = ?, status = ?, completed_at = ?, auto = ? WHERE id = ?",
		task.Title, task.CreatedAt, string(task.Status), task.CompletedAt, task.Auto, id,
	)
	if err != nil {
		return types.Task{}, fmt.Errorf("updating task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug("update of unknown task ignored", "id", id)
	}
	return task, nil
}

// Delete removes the row with the given id.
// Returns ErrNotFound if there is no such row.
func (s *Store) Delete(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return 0, types.ErrDatabaseClosed
	}
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting task %d: %w", id, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("delete %d: %w", id, types.ErrNotFound)
	}
	s.logger.Debug("deleted task", "id", id)
	return id, nil
}

// Close closes the database connection. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
