// Package status reports what is synced without changing anything.
package status

import (
	"context"
	"os"

	"github.com/emiliopalmerini/claude-sync/internal/adapters/storage"
	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/ports"
	"github.com/emiliopalmerini/claude-sync/internal/syncer"
)

// Reporter builds a domain.Status from the configuration, the source directory and the repository.
type Reporter struct {
	cfg   domain.Config
	repo  ports.Repository
	store *storage.Store
}

func NewReporter(cfg domain.Config, repo ports.Repository, store *storage.Store) *Reporter {
	return &Reporter{cfg: cfg, repo: repo, store: store}
}

// Report counts local and synced sessions. Pending is local minus synced; ids
// synced earlier but since deleted locally make it smaller than the real backlog.
// A missing source directory counts as zero local sessions.
func (r *Reporter) Report(ctx context.Context) (*domain.Status, error) {
	st := &domain.Status{
		MachineID:          r.cfg.MachineID,
		SyncRepoPath:       r.repo.Path(),
		ClaudeProjectsPath: r.cfg.ClaudeProjectsPath,
		Layout:             r.store.Layout().Name(),
	}

	if info, err := os.Stat(r.repo.Path()); err != nil || !info.IsDir() {
		return st, nil
	}
	st.Initialized = true

	if candidates, err := syncer.Discover(r.cfg.ClaudeProjectsPath); err == nil {
		st.LocalSessions = len(candidates)
	}

	synced, err := r.store.SyncedIDs()
	if err != nil {
		return nil, err
	}
	st.SyncedSessions = len(synced)
	st.Pending = st.LocalSessions - st.SyncedSessions

	if dirty, ok := r.repo.HasUncommittedChanges(ctx); ok {
		st.UncommittedChanges = dirty
	}
	if remote, ok := r.repo.Remote(ctx); ok {
		st.Remote = remote
	}

	return st, nil
}
