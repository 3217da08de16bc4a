package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-sync/internal/syncer"
	"github.com/emiliopalmerini/claude-sync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync whenever Claude Code writes a session",
	Long: `Run a sync, then watch the Claude projects directory and sync again once
session logs have been quiet for the debounce interval. Stops on Ctrl+C.

A session is only synced once its log has been untouched for --min-idle, so
a conversation that is paused is not archived half-written. Deferred sessions
are retried without waiting for new writes.

Requires sync_on_save to be enabled in the configuration.

Examples:
  claude-sync watch
  claude-sync watch --debounce 1m --push
  claude-sync watch --min-idle 30m`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// Flags
var (
	watchDebounce time.Duration
	watchMinIdle  time.Duration
	watchPush     bool
)

var errSyncOnSaveDisabled = errors.New("sync_on_save is disabled (enable it with: claude-sync config set sync_on_save true)")

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before syncing")
	watchCmd.Flags().DurationVar(&watchMinIdle, "min-idle", watch.DefaultMinIdle, "How long a session must be untouched before it is synced")
	watchCmd.Flags().BoolVar(&watchPush, "push", false, "Pull with rebase and push after each commit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	if !app.Config.SyncOnSave {
		return errSyncOnSaveDisabled
	}

	out := cmd.OutOrStdout()
	engine := app.Engine(out)
	opts := syncer.RunOptions{Push: watchPush, MinIdle: watchMinIdle}

	run := func(ctx context.Context) (time.Duration, error) {
		result, err := engine.Run(ctx, opts)
		if result == nil {
			return 0, err
		}
		printSyncSummary(out, result)
		if result.Deferred > 0 {
			return watchMinIdle, err
		}
		return 0, err
	}

	// The first pass may defer active sessions; the watcher picks them up on retry.
	retry, err := run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nWatching %s (debounce %s, min idle %s)\n", app.Config.ClaudeProjectsPath, watchDebounce, watchMinIdle)
	w := watch.New(app.Config.ClaudeProjectsPath, watchDebounce, run, app.Logger)
	w.RetryAfter(retry)
	return w.Run(cmd.Context())
}
