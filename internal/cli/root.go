// Package cli implements the todo command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/internal/paths"
	"github.com/tpsoftworks/todo/pkg/todo"
	"github.com/tpsoftworks/todo/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	global    bool
	jsonMode  bool
	verbose   int
}

// app carries the flags and environment hooks shared by one command tree.
type app struct {
	flags       rootFlags
	getwd       func() (string, error)
	projectRoot func(dir string) (string, bool)
	scanTodos   func(root string) ([]string, error)
	logger      *slog.Logger
}

func newApp() *app {
	return &app{
		getwd:       os.Getwd,
		projectRoot: paths.ProjectRoot,
		scanTodos:   gitGrepTodos,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewRootCmd creates the top-level "todo" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "A personal todo list",
		Long: "todo keeps a task list per git project, or a global one outside\n" +
			"a project, in a versioned file that upgrades itself when opened.",
		Version: todo.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: ~/.local/state/todo)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: project .todo or ~/.local/state/todo)")
	root.PersistentFlags().BoolVarP(&a.flags.global, "global", "g", false, "use the global database")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().CountVarP(&a.flags.verbose, "verbose", "v", "increase verbosity (-v info, -vv debug)")

	root.AddCommand(newAddCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newDoneCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newSetupCmd(a))
	root.AddCommand(newAutoCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "todo: %s\n", err)
		os.Exit(exitCode(err))
	}
}

// systemError marks failures of the environment rather than of the input.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func sysErr(format string, args ...any) error {
	return &systemError{err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *systemError
	switch {
	case errors.As(err, &se),
		errors.Is(err, types.ErrUnknownVersion),
		errors.Is(err, types.ErrMigrationPath),
		errors.Is(err, types.ErrCorruptDatabase),
		errors.Is(err, types.ErrDatabaseClosed):
		return exitSysError
	default:
		return exitUserError
	}
}

// parseID converts a command argument to a task id.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, arg)
	}
	return id, nil
}
