package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/internal/paths"
	"github.com/tpsoftworks/todo/pkg/types"
)

// todoMarker introduces a task comment in source files.
const todoMarker = "TODO:"

func newAutoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Add TODO: comments from the project as tasks",
		Long: "Auto searches the tracked files of the current git project for\n" +
			"\"TODO:\" comments and adds each one not already listed as an\n" +
			"automatic task in the project-local list.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.requireProject()
			if err != nil {
				return err
			}
			cfg, err := a.settings(cmd)
			if err != nil {
				return err
			}
			if a.flags.dataDir == "" {
				cfg.DataDir = filepath.Join(root, paths.ProjectDirName)
			}

			found, err := a.scanTodos(root)
			if err != nil {
				return sysErr("scan project: %w", err)
			}

			db, err := a.open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			existing, err := db.Read(types.AllTasks)
			if err != nil {
				return fmt.Errorf("read tasks: %w", err)
			}
			seen := make(map[string]bool, len(existing))
			for _, t := range existing {
				seen[t.Title] = true
			}

			added := 0
			for _, title := range found {
				if seen[title] {
					continue
				}
				task := types.NewTask(title)
				task.Auto = true
				id, err := db.Create(task)
				if err != nil {
					return fmt.Errorf("add task: %w", err)
				}
				seen[title] = true
				added++
				a.logger.Debug("auto task created", "id", id, "title", title)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d task(s)\n", added)
			return nil
		},
	}
}

// gitGrepTodos lists the TODO: comments in the tracked files under root.
func gitGrepTodos(root string) ([]string, error) {
	cmd := exec.Command("git", "grep", "--no-color", "-I", "-h", "-F", todoMarker)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		// git grep exits 1 when nothing matches.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, err
	}
	return parseTodos(out), nil
}

// parseTodos extracts the text after each TODO: marker, one title per
// line, dropping empty ones and duplicates.
func parseTodos(out []byte) []string {
	var titles []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		i := strings.Index(line, todoMarker)
		if i < 0 {
			continue
		}
		title := strings.TrimSpace(line[i+len(todoMarker):])
		title = strings.TrimSpace(strings.TrimSuffix(title, "*/"))
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}
	return titles
}
