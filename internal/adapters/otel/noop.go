package otel

import (
	"context"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportSession(ctx context.Context, m *domain.SessionMetadata) error {
	return nil
}

func (e *NoOpExporter) ExportRun(ctx context.Context, r *domain.SyncResult) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
