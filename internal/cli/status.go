package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-sync/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show the configured paths and how many local sessions are synced or pending.

Pending is local sessions minus synced sessions. Sessions that were synced
and later deleted locally make it smaller than the real backlog.

Examples:
  claude-sync status
  claude-sync status -o yaml`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	app, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	st, err := status.NewReporter(app.Config, app.Repo, app.Store).Report(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat != formatText {
		return writeStructured(cmd.OutOrStdout(), outputFormat, st)
	}
	printStatus(cmd.OutOrStdout(), st)
	return nil
}
