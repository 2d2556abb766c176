// Package commands implements the CLI commands for taskhistory.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/taskhistory/internal/app"
	"go.trai.ch/taskhistory/internal/build"
)

// CLI represents the command line interface for taskhistory.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(opts app.GlobalOptions)
	Record(ctx context.Context, taskPath string, outputs []string, opts app.RecordOptions) error
	Show(ctx context.Context, taskPath string) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "taskhistory",
		Short:         "Persistent execution history for build tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("rebuild", false, "Discard every stored record before running")
	rootCmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	rootCmd.PersistentFlags().Bool("trace", false, "Log every finished span")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		rebuild, _ := cmd.Flags().GetBool("rebuild")
		jsonLogs, _ := cmd.Flags().GetBool("json")
		trace, _ := cmd.Flags().GetBool("trace")

		c.app.Configure(app.GlobalOptions{
			Rebuild: rebuild,
			JSON:    jsonLogs,
			Trace:   trace,
		})
	}

	rootCmd.AddCommand(c.newRecordCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
