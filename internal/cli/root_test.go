package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpsoftworks/todo/internal/paths"
	"github.com/tpsoftworks/todo/pkg/types"
)

// testEnv is an isolated config dir, a project checkout and stubbed git.
type testEnv struct {
	t         *testing.T
	configDir string
	project   string
	inProject bool
	todos     []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	color.NoColor = true
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv("TODO_BACKEND", "")
	t.Setenv("TODO_LOG_LEVEL", "")
	return &testEnv{
		t:         t,
		configDir: filepath.Join(base, "config"),
		project:   filepath.Join(base, "project"),
	}
}

func (e *testEnv) app() *app {
	a := newApp()
	a.getwd = func() (string, error) { return e.project, nil }
	a.projectRoot = func(string) (string, bool) {
		if !e.inProject {
			return "", false
		}
		return e.project, true
	}
	a.scanTodos = func(string) ([]string, error) { return e.todos, nil }
	return a
}

// run executes the command tree and returns stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(e.app())
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config-dir", e.configDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "todo %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) listJSON(args ...string) []types.Task {
	e.t.Helper()
	out := e.mustRun(append([]string{"list", "--json"}, args...)...)
	var tasks []types.Task
	require.NoError(e.t, json.Unmarshal([]byte(out), &tasks))
	return tasks
}

func TestAddListDeleteScenario(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, "Created task 1\n", e.mustRun("add", "buy", "milk"))

	tasks := e.listJSON()
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)
	assert.Equal(t, types.StatusOpen, tasks[0].Status)

	assert.Equal(t, "Deleted task 1\n", e.mustRun("delete", "1"))
	assert.Empty(t, e.listJSON())

	_, err := e.run("delete", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestListText(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, "No tasks\n", e.mustRun("list"))

	e.mustRun("add", "write report, then send")
	e.mustRun("add", "file taxes")
	e.mustRun("done", "2")

	out := e.mustRun("list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[ ]")
	assert.Contains(t, lines[0], "write report, then send")
	assert.Contains(t, lines[1], "[x]")
	assert.Contains(t, lines[1], "file taxes")

	one := e.mustRun("list", "2")
	assert.Contains(t, one, "file taxes")
	assert.NotContains(t, one, "write report")
}

func TestDone(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "stretch")

	assert.Equal(t, "Completed task 1\n", e.mustRun("done", "1"))
	tasks := e.listJSON("1")
	require.Len(t, tasks, 1)
	assert.Equal(t, types.StatusDone, tasks[0].Status)
	assert.NotEmpty(t, tasks[0].CompletedAt)

	assert.Equal(t, "Task 1 is already done\n", e.mustRun("done", "1"))

	_, err := e.run("done", "7")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestInvalidIDArguments(t *testing.T) {
	e := newTestEnv(t)
	for _, args := range [][]string{
		{"done", "abc"},
		{"delete", "0"},
		{"list", "-3"},
	} {
		_, err := e.run(args...)
		assert.ErrorIs(t, err, types.ErrInvalidID, "%v", args)
		assert.Equal(t, exitUserError, exitCode(err))
	}
}

func TestAddJSON(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("add", "--json", "read", "book")

	var task types.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, 1, task.ID)
	assert.Equal(t, "read book", task.Title)
}

func TestDefaultConfigWritten(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("list")

	data, err := os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: file")
}

func TestConfigBackendSelection(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("backend: sqlite\n"), 0o644))

	dataDir := filepath.Join(t.TempDir(), "data")
	e.mustRun("--data-dir", dataDir, "add", "sqlite task")

	_, err := os.Stat(filepath.Join(dataDir, "todo.sqlite"))
	assert.NoError(t, err)
	assert.Len(t, e.listJSON("--data-dir", dataDir), 1)
}

func TestConfigInvalidBackend(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("backend: floppy\n"), 0o644))

	_, err := e.run("list")
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestConfigCommand(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("config")
	assert.Contains(t, out, "backend: file")
	assert.Contains(t, out, "backup: true")
}

func TestCorruptDatabaseExitsWithSystemError(t *testing.T) {
	e := newTestEnv(t)
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "todo.db"), []byte("not a database\n"), 0o644))

	_, err := e.run("--data-dir", dataDir, "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownVersion)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestSetupAndProjectDatabase(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run("setup")
	assert.ErrorIs(t, err, errNoProject)

	e.inProject = true
	require.NoError(t, os.MkdirAll(e.project, 0o755))
	out := e.mustRun("setup")
	local := filepath.Join(e.project, paths.ProjectDirName)
	assert.Contains(t, out, local)
	_, err = os.Stat(filepath.Join(local, "todo.db"))
	require.NoError(t, err)

	e.mustRun("add", "project task")
	e.mustRun("--global", "add", "global task")

	project := e.listJSON()
	require.Len(t, project, 1)
	assert.Equal(t, "project task", project[0].Title)

	global := e.listJSON("--global")
	require.Len(t, global, 1)
	assert.Equal(t, "global task", global[0].Title)

	_, err = e.run("--global", "setup")
	assert.ErrorIs(t, err, errNoProject)
}

func TestAutoAddsNewTodos(t *testing.T) {
	e := newTestEnv(t)
	e.inProject = true
	require.NoError(t, os.MkdirAll(e.project, 0o755))
	e.todos = []string{"handle timeouts", "document flags"}

	assert.Equal(t, "Added 2 task(s)\n", e.mustRun("auto"))
	assert.Equal(t, "Added 0 task(s)\n", e.mustRun("auto"))

	tasks := e.listJSON()
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.True(t, task.Auto, task.Title)
	}

	e.todos = append(e.todos, "retry uploads")
	assert.Equal(t, "Added 1 task(s)\n", e.mustRun("auto"))
}

func TestAutoOutsideProject(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run("auto")
	assert.ErrorIs(t, err, errNoProject)
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("version")
	assert.Contains(t, out, "todo v")
	assert.Contains(t, out, "database format: todo/3")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "not found", err: fmt.Errorf("delete 3: %w", types.ErrNotFound), want: exitUserError},
		{name: "invalid title", err: types.ErrInvalidTitle, want: exitUserError},
		{name: "unknown version", err: fmt.Errorf("open: %w", types.ErrUnknownVersion), want: exitSysError},
		{name: "migration path", err: types.ErrMigrationPath, want: exitSysError},
		{name: "corrupt", err: types.ErrCorruptDatabase, want: exitSysError},
		{name: "system", err: sysErr("disk: %w", errors.New("full")), want: exitSysError},
		{name: "plain", err: errors.New("bad flag"), want: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestParseTodos(t *testing.T) {
	out := []byte(strings.Join([]string{
		"\t// TODO: handle timeouts",
		"# TODO:   trim spaces   ",
		"/* TODO: close comment */",
		"// TODO:",
		"// TODO: handle timeouts",
		"no marker here",
	}, "\n"))

	assert.Equal(t, []string{"handle timeouts", "trim spaces", "close comment"}, parseTodos(out))
}
