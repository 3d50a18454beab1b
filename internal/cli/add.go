package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new task",
		Long: `Add creates an open task. All arguments are joined into the title.

Example:
  todo add buy milk
  todo add "call mum, then dad"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")

			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.Create(types.NewTask(title))
			if err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			a.logger.Info("task created", "id", id)

			if a.flags.jsonMode {
				tasks, err := db.Read(id)
				if err != nil {
					return fmt.Errorf("read task: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), tasks[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d\n", id)
			return nil
		},
	}
}
