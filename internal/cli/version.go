package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tpsoftworks/todo/pkg/todo"
)

const modulePath = "github.com/tpsoftworks/todo"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the todo version and database format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "todo v%s\nmodule: %s\ndatabase format: %s\n",
				todo.Version, modulePath, todo.FormatVersion())
			return nil
		},
	}
}
