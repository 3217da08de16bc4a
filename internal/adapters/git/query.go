package git

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds each advisory git lookup.
const DefaultQueryTimeout = 5 * time.Second

// Query implements ports.VcsQuery. Lookups never return errors; a failed
// or timed out command simply reports no value.
type Query struct {
	timeout time.Duration
}

// NewQuery creates a Query. A non-positive timeout selects DefaultQueryTimeout.
func NewQuery(timeout time.Duration) *Query {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Query{timeout: timeout}
}

func (q *Query) lookup(ctx context.Context, dir string, args ...string) (string, bool) {
	out, err := run(ctx, q.timeout, dir, args...)
	if err != nil || out == "" {
		return "", false
	}
	return out, true
}

// RemoteURL returns the URL of the origin remote.
func (q *Query) RemoteURL(ctx context.Context, dir string) (string, bool) {
	return q.lookup(ctx, dir, "remote", "get-url", "origin")
}

// Branch returns the checked out branch name. Detached HEAD reports no value.
func (q *Query) Branch(ctx context.Context, dir string) (string, bool) {
	return q.lookup(ctx, dir, "branch", "--show-current")
}

// CommitHash returns the 12 character abbreviated HEAD commit.
func (q *Query) CommitHash(ctx context.Context, dir string) (string, bool) {
	return q.lookup(ctx, dir, "rev-parse", "--short=12", "HEAD")
}

// IsDirty reports whether the working tree has uncommitted modifications.
func (q *Query) IsDirty(ctx context.Context, dir string) (bool, bool) {
	out, err := run(ctx, q.timeout, dir, "status", "--porcelain")
	if err != nil {
		return false, false
	}
	return out != "", true
}
