package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-sync/internal/config"
	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/pkg/tui/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and update configuration settings.

Without a subcommand, shows the effective configuration after defaults,
the config file, CLAUDE_SYNC_* environment variables and flags are applied.

Examples:
  claude-sync config                              # Show effective config
  claude-sync config path                         # Show the config file location
  claude-sync config get layout
  claude-sync config set include_thinking true`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value and save the file",
	Long: `Set one configuration value and save the file. Unrecognized keys already
in the file are kept.

Keys: machine_id, sync_repo_path, claude_projects_path, sync_on_save,
include_thinking, layout (machine or flat), git_timeout (e.g. 5s).`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValues(cfg domain.Config) map[string]any {
	values := make(map[string]any, len(config.Keys))
	for _, key := range config.Keys {
		values[key] = config.Value(cfg, key)
	}
	return values
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if outputFormat != formatText {
		return writeStructured(cmd.OutOrStdout(), outputFormat, configValues(cfg))
	}

	s := theme.Default()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, s.Muted.Render("# "+path))
	for _, key := range config.Keys {
		fmt.Fprintln(out, s.Row(key, fmt.Sprintf("%v", config.Value(cfg, key))))
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	_, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	key := args[0]
	value := config.Value(cfg, key)
	if value == nil {
		return fmt.Errorf("%w: %s", config.ErrUnknownKey, key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := config.Set(&cfg, args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %v\n", args[0], config.Value(cfg, args[0]))
	return nil
}
