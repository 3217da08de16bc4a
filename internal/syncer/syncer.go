// Package syncer copies new Claude Code sessions into the sync repository
// and commits them.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/claude-sync/internal/adapters/storage"
	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/ports"
	"github.com/emiliopalmerini/claude-sync/internal/util"
)

var (
	ErrRepoNotInitialized = errors.New("sync repository not initialized")
	ErrSourceNotFound     = errors.New("claude projects directory not found")
)

// MetadataExtractor reduces a session log to its metadata.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) (*domain.SessionMetadata, error)
}

// RunOptions controls a single sync run.
type RunOptions struct {
	// Push pulls with rebase and pushes after a successful commit.
	Push bool
	// MinIdle defers sessions whose log was modified less than MinIdle ago.
	// They stay pending for a later run. Zero syncs every pending session.
	MinIdle time.Duration
}

// Engine runs sync passes for one machine.
type Engine struct {
	cfg       domain.Config
	repo      ports.Repository
	store     *storage.Store
	extractor MetadataExtractor
	metrics   ports.MetricsExporter
	logger    *slog.Logger
	out       io.Writer

	now      func() time.Time
	newRunID func() string
}

// NewEngine creates an Engine. A nil metrics exporter or logger disables that output;
// progress lines go to out.
func NewEngine(
	cfg domain.Config,
	repo ports.Repository,
	store *storage.Store,
	extractor MetadataExtractor,
	metrics ports.MetricsExporter,
	logger *slog.Logger,
	out io.Writer,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if out == nil {
		out = io.Discard
	}
	return &Engine{
		cfg:       cfg,
		repo:      repo,
		store:     store,
		extractor: extractor,
		metrics:   metrics,
		logger:    logger,
		out:       out,
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// Run syncs every session not yet in the repository. Per-session failures are
// counted and reported but do not stop the run; they are retried next time.
// Pull and push failures are recorded in the result only.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*domain.SyncResult, error) {
	if !dirExists(e.repo.Path()) {
		return nil, fmt.Errorf("%w at %s (run init first)", ErrRepoNotInitialized, e.repo.Path())
	}
	if !dirExists(e.cfg.ClaudeProjectsPath) {
		return nil, fmt.Errorf("%w at %s", ErrSourceNotFound, e.cfg.ClaudeProjectsPath)
	}

	result := &domain.SyncResult{
		RunID:     e.newRunID(),
		MachineID: e.cfg.MachineID,
	}
	logger := e.logger.With("run_id", result.RunID, "machine_id", result.MachineID)

	synced, err := e.store.SyncedIDs()
	if err != nil {
		return nil, err
	}
	result.PreviouslySynced = len(synced)
	fmt.Fprintf(e.out, "Found %d already-synced sessions for %s\n", len(synced), e.cfg.MachineID)

	candidates, err := Discover(e.cfg.ClaudeProjectsPath)
	if err != nil {
		return nil, err
	}
	pending := Pending(candidates, synced)
	if opts.MinIdle > 0 {
		var active []Candidate
		pending, active = SplitActive(pending, e.now().Add(-opts.MinIdle))
		result.Deferred = len(active)
	}
	fmt.Fprintf(e.out, "Found %d new sessions to sync\n", len(pending))
	if result.Deferred > 0 {
		fmt.Fprintf(e.out, "Deferring %d sessions still being written\n", result.Deferred)
	}
	logger.Info("sync started",
		"local", len(candidates),
		"synced", len(synced),
		"pending", len(pending),
		"deferred", result.Deferred,
	)

	for _, c := range pending {
		if err := ctx.Err(); err != nil {
			logger.Warn("sync interrupted", "newly_synced", result.NewlySynced)
			result.Total = result.PreviouslySynced + result.NewlySynced
			return result, err
		}

		meta, err := e.syncSession(ctx, c)
		if err != nil {
			result.Failed++
			fmt.Fprintf(e.out, "  ✗ %s... Error: %v\n", util.ShortID(c.ID), err)
			logger.Error("session sync failed", "session_id", c.ID, "path", c.Path, "error", err)
			continue
		}

		result.NewlySynced++
		result.TotalTokens += meta.TotalTokens()
		fmt.Fprintf(e.out, "  ✓ %s... (%s)\n", util.ShortID(c.ID), c.ProjectDir)
		logger.Debug("session synced", "session_id", c.ID, "project", c.ProjectDir, "messages", meta.MessageCount)

		if e.metrics != nil {
			if err := e.metrics.ExportSession(ctx, meta); err != nil {
				logger.Warn("failed to export session metrics", "session_id", c.ID, "error", err)
			}
		}
	}
	result.Total = result.PreviouslySynced + result.NewlySynced

	if err := e.finalize(ctx, result, opts, logger); err != nil {
		return result, err
	}

	if e.metrics != nil {
		if err := e.metrics.ExportRun(ctx, result); err != nil {
			logger.Warn("failed to export run metrics", "error", err)
		}
	}
	logger.Info("sync finished",
		"newly_synced", result.NewlySynced,
		"failed", result.Failed,
		"committed", result.Committed,
		"pushed", result.Pushed,
	)
	return result, nil
}

// syncSession writes the session content first and its metadata last, so a
// session only counts as synced once both are on disk.
func (e *Engine) syncSession(ctx context.Context, c Candidate) (*domain.SessionMetadata, error) {
	meta, err := e.extractor.Extract(ctx, c.Path)
	if err != nil {
		return nil, err
	}
	if meta.SessionID != c.ID {
		return nil, fmt.Errorf("session id mismatch: %s != %s", meta.SessionID, c.ID)
	}

	date := meta.DateBucket(util.TodayUTC(e.now()))
	if _, err := e.store.WriteSession(c.Path, date, c.ID, e.cfg.IncludeThinking); err != nil {
		return nil, err
	}
	if _, err := e.store.WriteMetadata(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (e *Engine) finalize(ctx context.Context, result *domain.SyncResult, opts RunOptions, logger *slog.Logger) error {
	if result.NewlySynced == 0 {
		return nil
	}

	if err := e.repo.AddAll(ctx); err != nil {
		return fmt.Errorf("failed to stage synced sessions: %w", err)
	}
	subject := CommitSubject(result.NewlySynced, result.MachineID)
	if err := e.repo.Commit(ctx, subject+"\n\nRun-ID: "+result.RunID); err != nil {
		return fmt.Errorf("failed to commit synced sessions: %w", err)
	}
	result.Committed = true
	fmt.Fprintf(e.out, "\nCommitted: %s\n", subject)

	if !opts.Push {
		return nil
	}

	if err := e.repo.Pull(ctx); err != nil {
		result.PullError = err.Error()
		fmt.Fprintf(e.out, "Pull failed, not pushing: %v\n", err)
		logger.Warn("pull failed", "error", err)
		return nil
	}
	if err := e.repo.Push(ctx); err != nil {
		result.PushError = err.Error()
		fmt.Fprintf(e.out, "Push failed: %v\n", err)
		logger.Warn("push failed", "error", err)
		return nil
	}
	result.Pushed = true
	fmt.Fprintln(e.out, "Pushed to remote")
	return nil
}

// CommitSubject is the first line of a sync commit message.
func CommitSubject(n int, machineID string) string {
	return fmt.Sprintf("Sync %d sessions from %s", n, machineID)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
