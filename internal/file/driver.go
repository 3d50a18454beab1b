package file

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/tpsoftworks/todo/pkg/types"
)

// FileName is the database file created inside the data directory.
const FileName = "todo.db"

// Compile-time interface check: Driver must implement Database.
var _ types.Database = (*Driver)(nil)

// Driver serves tasks from a versioned database file. The whole dataset
// is held in memory in the current format and the file is rewritten
// after every mutation.
type Driver struct {
	mu        sync.Mutex
	path      string
	logger    *slog.Logger
	backup    bool
	now       func() time.Time
	data      *v3Dataset
	highWater int // largest id assigned by this driver
	closed    bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used for debug and migration messages.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithBackup enables or disables copying an old-format file aside before
// it is migrated. Enabled by default.
func WithBackup(enabled bool) Option {
	return func(d *Driver) { d.backup = enabled }
}

// WithClock overrides the time source used to stamp new tasks.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// Open opens the database in dir, creating the directory and an empty
// current-format file if needed. A file written in an older format is
// migrated to the current one and rewritten before Open returns.
func Open(dir string, opts ...Option) (*Driver, error) {
	d := &Driver{
		path:   filepath.Join(dir, FileName),
		logger: slog.Default(),
		backup: true,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("db", d.path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if _, err := os.Stat(d.path); errors.Is(err, fs.ErrNotExist) {
		d.logger.Debug("creating database", "version", CurrentVersion())
		if err := writeDatabase(d.path, &v3Dataset{}); err != nil {
			return nil, err
		}
		if err := os.Chmod(d.path, 0o644); err != nil {
			return nil, fmt.Errorf("setting permissions on %s: %w", d.path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", d.path, err)
	}

	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

// load detects the file's version, migrates it to the current version
// and rewrites the file when anything changed.
func (d *Driver) load() error {
	tag, body, err := readDatabase(d.path)
	if err != nil {
		return err
	}

	ds, ok, err := detect(chain, tag, body)
	if err != nil {
		return fmt.Errorf("%s (version %s): %w", d.path, tag, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s was written with version %q", types.ErrUnknownVersion, d.path, tag)
	}

	current := CurrentVersion()
	if ds.version() == current {
		d.logger.Debug("database is already the latest version, no migration needed", "version", current)
		return d.adopt(ds)
	}

	path, err := resolvePath(chain, ds.version(), current)
	if err != nil {
		return err
	}
	d.logger.Info("migrating database", "from", ds.version(), "to", current, "steps", len(path)-1)

	if d.backup {
		dst, err := backupFile(d.path, ds.version())
		if err != nil {
			return err
		}
		d.logger.Info("saved pre-migration backup", "backup", dst)
	}

	migrated, err := migrate(ds, path)
	if err != nil {
		return err
	}
	if err := d.adopt(migrated); err != nil {
		return err
	}
	return writeDatabase(d.path, d.data)
}

// adopt takes ownership of a current-format dataset.
func (d *Driver) adopt(ds dataset) error {
	data, ok := ds.(*v3Dataset)
	if !ok {
		return fmt.Errorf("%w: ended at %s, want %s", types.ErrMigrationPath, ds.version(), CurrentVersion())
	}
	d.data = data
	d.highWater = types.NextID(data.tasks, 0) - 1
	return nil
}

// commit persists tasks and, only once the file is written, makes them
// the in-memory dataset.
func (d *Driver) commit(tasks []types.Task) error {
	next := &v3Dataset{tasks: tasks}
	if err := writeDatabase(d.path, next); err != nil {
		return err
	}
	d.data = next
	return nil
}

// Create assigns the next id to task, appends it and rewrites the file.
func (d *Driver) Create(task types.Task) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, types.ErrDatabaseClosed
	}
	task, err := types.PrepareNew(task, d.now())
	if err != nil {
		return 0, err
	}
	task.ID = types.NextID(d.data.tasks, d.highWater)
	d.logger.Debug("creating task", "id", task.ID, "title", task.Title)

	if err := d.commit(append(slices.Clone(d.data.tasks), task)); err != nil {
		return 0, err
	}
	d.highWater = task.ID
	return task.ID, nil
}

// Read returns every task for types.AllTasks, otherwise the task with
// the given id. An unknown id returns an empty slice.
func (d *Driver) Read(id int) ([]types.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, types.ErrDatabaseClosed
	}
	if id == types.AllTasks {
		d.logger.Debug("reading all tasks", "count", len(d.data.tasks))
		return slices.Clone(d.data.tasks), nil
	}
	d.logger.Debug("reading task", "id", id)
	for _, t := range d.data.tasks {
		if t.ID == id {
			return []types.Task{t}, nil
		}
	}
	return []types.Task{}, nil
}

// Update replaces the task with the given id, keeping its position, and
// rewrites the file. An unknown id changes nothing.
func (d *Driver) Update(id int, task types.Task) (types.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return types.Task{}, types.ErrDatabaseClosed
	}
	if id <= 0 {
		return types.Task{}, types.ErrInvalidID
	}
	if err := task.Validate(); err != nil {
		return types.Task{}, err
	}
	task.ID = id
	d.logger.Debug("updating task", "id", id, "title", task.Title, "status", task.Status)

	i := slices.IndexFunc(d.data.tasks, func(t types.Task) bool { return t.ID == id })
	if i < 0 {
		d.logger.Debug("update of unknown task ignored", "id", id)
		return task, nil
	}
	tasks := slices.Clone(d.data.tasks)
	tasks[i] = task
	if err := d.commit(tasks); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Delete removes the first task with the given id and rewrites the file.
// Returns ErrNotFound if there is no such task.
func (d *Driver) Delete(id int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, types.ErrDatabaseClosed
	}
	d.logger.Debug("deleting task", "id", id)

	i := slices.IndexFunc(d.data.tasks, func(t types.Task) bool { return t.ID == id })
	if i < 0 {
		return 0, fmt.Errorf("delete %d: %w", id, types.ErrNotFound)
	}
	if err := d.commit(slices.Delete(slices.Clone(d.data.tasks), i, i+1)); err != nil {
		return 0, err
	}
	return id, nil
}

// Close detaches the driver. The file is already up to date, so nothing
// is written. Close is idempotent.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Path returns the database file path.
func (d *Driver) Path() string {
	return d.path
}

// Version returns the format tag of the in-memory dataset.
func (d *Driver) Version() string {
	return d.data.version()
}
