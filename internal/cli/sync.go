package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-sync/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync new sessions into the repository",
	Long: `Copy every session that is not yet in the sync repository, write its
metadata, and commit the batch.

Sessions that fail are reported and retried on the next run.

Examples:
  claude-sync sync              # Sync and commit
  claude-sync sync --push       # Also pull --rebase and push
  claude-sync sync -o json      # Print the result as JSON`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

// Flags
var syncPush bool

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncPush, "push", false, "Pull with rebase and push after committing")
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	app, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	// Keep stdout clean for structured output.
	var progress io.Writer = cmd.OutOrStdout()
	if outputFormat != formatText {
		progress = cmd.ErrOrStderr()
	}

	result, runErr := app.Engine(progress).Run(cmd.Context(), syncer.RunOptions{Push: syncPush})
	if result == nil {
		return runErr
	}

	if outputFormat == formatText {
		printSyncSummary(cmd.OutOrStdout(), result)
	} else if err := writeStructured(cmd.OutOrStdout(), outputFormat, result); err != nil {
		return err
	}
	return runErr
}
