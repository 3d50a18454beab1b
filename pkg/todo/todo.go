// Package todo opens a task database for the backend named in a Config.
package todo

import (
	"fmt"
	"log/slog"

	"github.com/tpsoftworks/todo/internal/file"
	"github.com/tpsoftworks/todo/internal/memory"
	"github.com/tpsoftworks/todo/internal/sqlite"
	"github.com/tpsoftworks/todo/pkg/types"
)

// Version is the release of the todo tool.
const Version = "1.0.0"

// FormatVersion returns the tag written at the top of new database files.
func FormatVersion() string {
	return file.CurrentVersion()
}

// Open validates cfg and opens the selected backend. A nil logger uses
// slog.Default(). The caller must Close the returned Database.
func Open(cfg types.Config, logger *slog.Logger) (types.Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backend != types.BackendMemory && cfg.DataDir == "" {
		return nil, fmt.Errorf("backend %s: data directory not set", cfg.Backend)
	}

	switch cfg.Backend {
	case types.BackendMemory:
		return memory.New(logger), nil
	case types.BackendSQLite:
		store, err := sqlite.Open(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		driver, err := file.Open(cfg.DataDir, file.WithLogger(logger), file.WithBackup(cfg.Backup))
		if err != nil {
			return nil, err
		}
		return driver, nil
	}
}
