package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/taskhistory/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stored task records and snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, _ := cmd.Flags().GetBool("records")
			snapshots, _ := cmd.Flags().GetBool("snapshots")

			opts := app.CleanOptions{
				Records:   records,
				Snapshots: snapshots,
			}
			if !records && !snapshots {
				// Default behavior: clean everything
				opts.Records = true
				opts.Snapshots = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("records", "r", false, "Remove task records only")
	cmd.Flags().BoolP("snapshots", "s", false, "Remove file snapshots and the task records referencing them")

	return cmd
}
