// Package paths resolves the configuration directory, the data directory
// and the git project a todo command runs in.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName names the per-user state directory.
const AppName = "todo"

// ProjectDirName is the project-local data directory created by
// "todo setup" at the root of a git repository.
const ProjectDirName = ".todo"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TODO_CONFIG_DIR"
	EnvDataDir   = "TODO_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	gitTopLevel   func(dir string) (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	gitTopLevel:   gitTopLevel,
}

// DefaultStateDir returns the platform-specific directory holding the
// global database and config.yaml.
//
// Linux:   $XDG_STATE_HOME/todo (fallback ~/.local/state/todo)
// macOS:   ~/Library/Application Support/todo
// Windows: %APPDATA%/todo
func DefaultStateDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "state", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > TODO_CONFIG_DIR env > DefaultStateDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultStateDir()
}

// ResolveDataDir returns the data directory following the precedence
// chain: flag > config.yaml data_dir > TODO_DATA_DIR env > projectDir >
// DefaultStateDir(). projectDir is the project-local directory, or empty
// when the global database should be used.
func ResolveDataDir(flag, configYAMLValue, projectDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if projectDir != "" {
		return filepath.Abs(projectDir)
	}
	return DefaultStateDir()
}

// ProjectRoot returns the top-level directory of the git repository
// containing dir. ok is false outside a repository or without git.
func ProjectRoot(dir string) (root string, ok bool) {
	top, err := platformDir.gitTopLevel(dir)
	if err != nil || top == "" {
		return "", false
	}
	return top, true
}

// ProjectDataDir returns the project-local data directory under the
// project root, if "todo setup" has created it.
func ProjectDataDir(root string) (string, bool) {
	local := filepath.Join(root, ProjectDirName)
	info, err := os.Stat(local)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return local, true
}

func gitTopLevel(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
