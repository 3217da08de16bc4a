package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "claude-sync",
	Short: "Sync Claude Code conversations to a git repository",
	Long: `claude-sync copies Claude Code session logs into a git repository and
writes a metadata file next to each one: machine, project, git context,
timing, token counts and tools used.

Each session is synced once. Running without a subcommand syncs all new sessions.

Examples:
  claude-sync init --remote git@github.com:me/claude-history.git
  claude-sync                 # Sync new sessions
  claude-sync sync --push     # Sync, then pull --rebase and push
  claude-sync status          # Show what is pending`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runSync,
}

// Flags
var (
	configPath   string
	machineID    string
	verbose      bool
	outputFormat string
)

// Execute runs the root command. SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.claude-sync/config.json, or $CLAUDE_SYNC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&machineID, "machine-id", "", "Override the machine ID")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format: text, json, yaml")

	rootCmd.Flags().BoolVar(&syncPush, "push", false, "Pull with rebase and push after committing")
}
