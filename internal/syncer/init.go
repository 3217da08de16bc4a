package syncer

import (
	"context"
	"fmt"
	"io"

	"github.com/emiliopalmerini/claude-sync/internal/adapters/storage"
	"github.com/emiliopalmerini/claude-sync/internal/ports"
)

const InitialCommitMessage = "Initial commit"

// InitRepository prepares the sync repository: git init, the sessions and
// metadata directories, a README for the layout, an initial commit and, when
// remoteURL is set, an origin remote. An existing repository is left untouched
// and reported as such. It returns whether anything was created.
func InitRepository(ctx context.Context, repo ports.Repository, store *storage.Store, remoteURL string, out io.Writer) (bool, error) {
	if repo.IsInitialized() {
		fmt.Fprintf(out, "Sync repo already exists at %s\n", repo.Path())
		return false, nil
	}

	if err := repo.Init(ctx); err != nil {
		return false, err
	}
	if err := store.EnsureDirs(); err != nil {
		return false, err
	}
	if err := store.WriteReadme(); err != nil {
		return false, err
	}
	if err := repo.AddAll(ctx); err != nil {
		return false, fmt.Errorf("failed to stage initial files: %w", err)
	}
	if err := repo.Commit(ctx, InitialCommitMessage); err != nil {
		return false, fmt.Errorf("failed to create initial commit: %w", err)
	}
	if remoteURL != "" {
		if err := repo.AddRemote(ctx, "origin", remoteURL); err != nil {
			return false, err
		}
	}

	fmt.Fprintf(out, "Initialized sync repo at %s\n", repo.Path())
	return true, nil
}
