package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/pkg/types"
)

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
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

			tasks, err := db.Read(id)
			if err != nil {
				return fmt.Errorf("read task: %w", err)
			}
			if len(tasks) == 0 {
				return fmt.Errorf("task %d: %w", id, types.ErrNotFound)
			}

			task := tasks[0]
			if task.Done() {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d is already done\n", id)
				return nil
			}
			task.Complete(time.Now())
			if _, err := db.Update(id, task); err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			a.logger.Info("task completed", "id", id)
			fmt.Fprintf(cmd.OutOrStdout(), "Completed task %d\n", id)
			return nil
		},
	}
}
