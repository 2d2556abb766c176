package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-path]",
		Short: "Show the stored executions of a task",
		Long:  "Show the stored executions of a task, most recent first. Without a task path, list every task with a stored history.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskPath := ""
			if len(args) == 1 {
				taskPath = args[0]
			}
			return c.app.Show(cmd.Context(), taskPath)
		},
	}
}
