package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Repo implements ports.Repository for the sync repository.
// Mutating commands run without a timeout; push and pull may block on the network.
type Repo struct {
	path         string
	queryTimeout time.Duration
}

// NewRepo returns a Repo rooted at path. The directory does not need to exist yet.
func NewRepo(path string, queryTimeout time.Duration) *Repo {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Repo{path: path, queryTimeout: queryTimeout}
}

func (r *Repo) Path() string {
	return r.path
}

// IsInitialized reports whether path already contains a .git directory.
func (r *Repo) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.path, ".git"))
	return err == nil
}

// Init creates the directory and runs git init. It is a no-op on an existing repository.
func (r *Repo) Init(ctx context.Context) error {
	if err := os.MkdirAll(r.path, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}
	if r.IsInitialized() {
		return nil
	}
	if _, err := run(ctx, 0, r.path, "init"); err != nil {
		return fmt.Errorf("failed to init repository: %w", err)
	}
	return nil
}

func (r *Repo) AddRemote(ctx context.Context, name, url string) error {
	if _, err := run(ctx, 0, r.path, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// AddAll stages every change in the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	if _, err := run(ctx, 0, r.path, "add", "."); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

func (r *Repo) Commit(ctx context.Context, message string) error {
	if _, err := run(ctx, 0, r.path, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *Repo) Pull(ctx context.Context) error {
	if _, err := run(ctx, 0, r.path, "pull", "--rebase"); err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}
	return nil
}

func (r *Repo) Push(ctx context.Context) error {
	if _, err := run(ctx, 0, r.path, "push"); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// HasUncommittedChanges reports whether git status shows any change.
func (r *Repo) HasUncommittedChanges(ctx context.Context) (bool, bool) {
	out, err := run(ctx, r.queryTimeout, r.path, "status", "--porcelain")
	if err != nil {
		return false, false
	}
	return out != "", true
}

// Remote returns the URL of the first configured remote.
func (r *Repo) Remote(ctx context.Context) (string, bool) {
	out, err := run(ctx, r.queryTimeout, r.path, "remote", "-v")
	if err != nil || out == "" {
		return "", false
	}
	fields := strings.Fields(strings.SplitN(out, "\n", 2)[0])
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}
