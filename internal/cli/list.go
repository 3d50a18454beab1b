package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [id]",
		Short: "List all tasks, or one task by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := types.AllTasks
			if len(args) == 1 {
				var err error
				if id, err = parseID(args[0]); err != nil {
					return err
				}
			}

			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			tasks, err := db.Read(id)
			if err != nil {
				return fmt.Errorf("read tasks: %w", err)
			}
			if tasks == nil {
				tasks = []types.Task{}
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}
}

var (
	openMark = color.New(color.FgYellow).SprintFunc()
	doneMark = color.New(color.FgGreen).SprintFunc()
	autoMark = color.New(color.FgCyan).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

// printTasks writes one line per task. The title goes last so colored
// suffixes do not disturb column alignment.
func printTasks(w io.Writer, tasks []types.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range tasks {
		mark := openMark("[ ]")
		if t.Done() {
			mark = doneMark("[x]")
		}
		title := t.Title
		if t.Auto {
			title += " " + autoMark("(auto)")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, mark, faint(t.CreatedAt), title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
