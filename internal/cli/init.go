package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/emiliopalmerini/claude-sync/internal/config"
	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/syncer"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config and sync repository",
	Long: `Save the configuration file and create the sync repository.

The repository gets sessions/ and metadata/ directories, a README describing
the layout, and an initial commit. An existing repository is left as it is.

Examples:
  claude-sync init
  claude-sync init --remote git@github.com:me/claude-history.git
  claude-sync init --machine-id work-laptop --layout flat
  claude-sync init --interactive`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// Flags
var (
	initRemote      string
	initLayout      string
	initInteractive bool
)

var errNotTerminal = errors.New("--interactive requires a terminal")

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initRemote, "remote", "", "Git remote URL to add as origin")
	initCmd.Flags().StringVar(&initLayout, "layout", "", "Repository layout: machine or flat")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("layout") {
		cfg.Layout = initLayout
	}

	remote := initRemote
	if initInteractive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errNotTerminal
		}
		if err := runInitForm(&cfg, &remote); err != nil {
			return err
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", path)

	app, err := newAppContext(cmd, cfg, path)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	created, err := syncer.InitRepository(cmd.Context(), app.Repo, app.Store, remote, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	app.Logger.Info("init finished", "repo", app.Repo.Path(), "created", created, "layout", cfg.Layout)
	return nil
}

// runInitForm asks for the settings init needs, prefilled with the current values.
func runInitForm(cfg *domain.Config, remote *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Machine ID").
				Description("Identifies this machine in the sync repository").
				Value(&cfg.MachineID).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("machine ID must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Git remote URL").
				Description("Leave empty to add one later").
				Value(remote),
			huh.NewSelect[string]().
				Title("Repository layout").
				Options(
					huh.NewOption("Per machine: sessions/<machine>/<date>/", domain.LayoutMachine),
					huh.NewOption("Flat: sessions/<date>/", domain.LayoutFlat),
				).
				Value(&cfg.Layout),
			huh.NewConfirm().
				Title("Include thinking blocks?").
				Description("They can make session files much larger").
				Value(&cfg.IncludeThinking),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to run init form: %w", err)
	}
	return nil
}
