// Package memory implements an in-memory todo backend. Nothing is
// persisted; the dataset lives as long as the Store.
package memory

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tpsoftworks/todo/pkg/types"
)

// Compile-time interface check: Store must implement Database.
var _ types.Database = (*Store)(nil)

// Store keeps tasks in insertion order.
type Store struct {
	mu        sync.Mutex
	logger    *slog.Logger
	tasks     []types.Task
	highWater int
	closed    bool
}

// New returns an empty store. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger, tasks: []types.Task{}}
}

// Create assigns the next id and appends the task.
func (s *Store) Create(task types.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrDatabaseClosed
	}
	task, err := types.PrepareNew(task, time.Now())
	if err != nil {
		return 0, err
	}
	task.ID = types.NextID(s.tasks, s.highWater)
	s.logger.Debug("creating a task", "id", task.ID, "title", task.Title)

	s.tasks = append(s.tasks, task)
	s.highWater = task.ID
	return task.ID, nil
}

// Read returns all tasks, or the one with the given id.
func (s *Store) Read(id int) ([]types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, types.ErrDatabaseClosed
	}
	if id == types.AllTasks {
		return slices.Clone(s.tasks), nil
	}
	for _, t := range s.tasks {
		if t.ID == id {
			return []types.Task{t}, nil
		}
	}
	return []types.Task{}, nil
}

// Update replaces the task with the given id. Unknown ids are ignored.
func (s *Store) Update(id int, task types.Task) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.Task{}, types.ErrDatabaseClosed
	}
	if id <= 0 {
		return types.Task{}, types.ErrInvalidID
	}
	if err := task.Validate(); err != nil {
		return types.Task{}, err
	}
	task.ID = id
	s.logger.Debug("updating a task", "id", id)

	if i := slices.IndexFunc(s.tasks, func(t types.Task) bool { return t.ID == id }); i >= 0 {
		s.tasks[i] = task
	}
	return task, nil
}

// Delete removes the task with the given id.
func (s *Store) Delete(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrDatabaseClosed
	}
	i := slices.IndexFunc(s.tasks, func(t types.Task) bool { return t.ID == id })
	if i < 0 {
		return 0, fmt.Errorf("delete %d: %w", id, types.ErrNotFound)
	}
	s.logger.Debug("deleting a task", "id", id)
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return id, nil
}

// Close drops the dataset.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tasks = nil
	return nil
}
