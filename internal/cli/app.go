package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-sync/internal/adapters/git"
	"github.com/emiliopalmerini/claude-sync/internal/adapters/otel"
	"github.com/emiliopalmerini/claude-sync/internal/adapters/storage"
	"github.com/emiliopalmerini/claude-sync/internal/config"
	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/logging"
	"github.com/emiliopalmerini/claude-sync/internal/parser"
	"github.com/emiliopalmerini/claude-sync/internal/ports"
	"github.com/emiliopalmerini/claude-sync/internal/syncer"
	"github.com/emiliopalmerini/claude-sync/internal/util"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config     domain.Config
	ConfigPath string

	Logger    *slog.Logger
	Repo      ports.Repository
	Query     ports.VcsQuery
	Store     *storage.Store
	Extractor *parser.Extractor
	Metrics   ports.MetricsExporter

	logCloser io.Closer
}

// loadConfig resolves the config path and loads the layered configuration for cmd.
func loadConfig(cmd *cobra.Command) (domain.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return domain.Config{}, "", err
		}
	} else {
		path = util.ExpandHome(path)
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return domain.Config{}, "", err
	}
	return cfg, path, nil
}

// NewAppContext loads the configuration and creates all dependencies.
func NewAppContext(cmd *cobra.Command) (*AppContext, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newAppContext(cmd, cfg, path)
}

func newAppContext(cmd *cobra.Command, cfg domain.Config, path string) (*AppContext, error) {
	layout, err := storage.LayoutFor(cfg.Layout)
	if err != nil {
		return nil, err
	}

	logDir := ""
	if appDir, err := util.GetAppDir(); err == nil {
		logDir = filepath.Join(appDir, "logs")
	}
	logger, logCloser, err := logging.New(logging.Options{
		Dir:     logDir,
		Verbose: verbose,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	query := git.NewQuery(cfg.GitTimeout)

	return &AppContext{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
		Repo:       git.NewRepo(cfg.SyncRepoPath, cfg.GitTimeout),
		Query:      query,
		Store:      storage.NewStore(cfg.SyncRepoPath, cfg.MachineID, layout),
		Extractor:  parser.NewExtractor(query, parser.LocalMachine(cfg.MachineID)),
		Metrics:    newMetricsExporter(cmd.Context(), cmd.ErrOrStderr(), logger),
		logCloser:  logCloser,
	}, nil
}

// newMetricsExporter returns the OTLP exporter when enabled, degrading to a no-op on failure.
func newMetricsExporter(ctx context.Context, stderr io.Writer, logger *slog.Logger) ports.MetricsExporter {
	cfg := otel.LoadConfig()
	if !cfg.Enabled {
		return otel.NewNoOpExporter()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	exp, err := otel.NewExporter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: metrics export disabled: %v\n", err)
		logger.Warn("failed to create metrics exporter", "error", err)
		return otel.NewNoOpExporter()
	}
	return exp
}

// Engine returns a sync engine writing progress lines to out.
func (a *AppContext) Engine(out io.Writer) *syncer.Engine {
	return syncer.NewEngine(a.Config, a.Repo, a.Store, a.Extractor, a.Metrics, a.Logger, out)
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	var errs []error
	if a.Metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.Metrics.Close(ctx))
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
