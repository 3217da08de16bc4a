package ports

import "context"

// VcsQuery answers advisory questions about a working directory.
// Every method is best-effort: any failure (tool missing, timeout,
// non-zero exit, not a repository) yields ok == false, never an error.
type VcsQuery interface {
	RemoteURL(ctx context.Context, dir string) (url string, ok bool)
	Branch(ctx context.Context, dir string) (branch string, ok bool)
	CommitHash(ctx context.Context, dir string) (hash string, ok bool)
	IsDirty(ctx context.Context, dir string) (dirty bool, ok bool)
}

// Repository is the version-controlled working tree sessions are synced into.
type Repository interface {
	Path() string
	IsInitialized() bool
	Init(ctx context.Context) error
	AddRemote(ctx context.Context, name, url string) error
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Pull(ctx context.Context) error
	Push(ctx context.Context) error

	// HasUncommittedChanges and Remote are best-effort like VcsQuery.
	HasUncommittedChanges(ctx context.Context) (dirty bool, ok bool)
	Remote(ctx context.Context) (url string, ok bool)
}
