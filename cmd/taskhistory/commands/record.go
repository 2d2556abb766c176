package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/taskhistory/internal/app"
)

func (c *CLI) newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <task-path> [outputs...]",
		Short: "Record an execution of a task",
		Long: "Record an execution of the task at task-path producing the given output files.\n" +
			"The stored execution sharing the most outputs is reported as the baseline.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, _ := cmd.Flags().GetStringSlice("input")

			return c.app.Record(cmd.Context(), args[0], args[1:], app.RecordOptions{
				Inputs: inputs,
			})
		},
	}
	cmd.Flags().StringSliceP("input", "i", nil, "Input path or glob to snapshot (repeatable)")
	return cmd
}
