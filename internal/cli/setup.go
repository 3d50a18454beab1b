package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/internal/paths"
	"github.com/tpsoftworks/todo/pkg/types"
)

// errNoProject reports a project-only command run outside a git project.
var errNoProject = errors.New("not inside a git project")

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Set up a project-local todo list",
		Long: "Setup creates a .todo directory at the root of the current git\n" +
			"project and initializes its database. Commands run inside the\n" +
			"project use it instead of the global list unless --global is given.",
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

			local := filepath.Join(root, paths.ProjectDirName)
			if err := os.MkdirAll(local, 0o755); err != nil {
				return sysErr("create %s: %w", local, err)
			}
			if cfg.Backend == types.BackendMemory {
				cfg.Backend = types.BackendFile
			}
			cfg.DataDir = local

			db, err := a.open(cfg)
			if err != nil {
				return err
			}
			if err := db.Close(); err != nil {
				return sysErr("finalize storage: %w", err)
			}
			a.logger.Info("project database ready", "dir", local)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized todo list in %s\n", local)
			return nil
		},
	}
}

// requireProject returns the git project root for project-only commands.
func (a *app) requireProject() (string, error) {
	if a.flags.global {
		return "", fmt.Errorf("%w: --global cannot be combined with a project command", errNoProject)
	}
	wd, err := a.getwd()
	if err != nil {
		return "", sysErr("working directory: %w", err)
	}
	root, ok := a.projectRoot(wd)
	if !ok {
		return "", errNoProject
	}
	return root, nil
}
