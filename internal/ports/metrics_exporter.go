package ports

import (
	"context"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

// MetricsExporter exports sync metrics to an external observability system.
type MetricsExporter interface {
	// ExportSession records metrics for one newly synced session.
	ExportSession(ctx context.Context, m *domain.SessionMetadata) error
	// ExportRun records the outcome of a sync run.
	ExportRun(ctx context.Context, r *domain.SyncResult) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
