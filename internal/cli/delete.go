package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			deleted, err := db.Delete(id)
			if err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			a.logger.Info("task deleted", "id", deleted)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", deleted)
			return nil
		},
	}
}
