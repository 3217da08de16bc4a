package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/ports"
)

const (
	serviceName    = "claude-sync"
	serviceVersion = "1.0.0"
)

// Exporter exports sync metrics to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	meter         metric.Meter
	tokensTotal   metric.Int64Counter
	durationHist  metric.Float64Histogram
	messagesHist  metric.Int64Histogram
	sessionsTotal metric.Int64Counter
	failedTotal   metric.Int64Counter
	runsTotal     metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	e, err := newExporter(provider)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// newExporter registers the instruments on an already configured provider.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	tokensTotal, err := meter.Int64Counter(
		"claude_sync_session_tokens_total",
		metric.WithDescription("Total tokens in synced sessions"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tokens counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"claude_sync_session_duration_seconds",
		metric.WithDescription("Synced session duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	messagesHist, err := meter.Int64Histogram(
		"claude_sync_session_messages",
		metric.WithDescription("Number of records per synced session"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages histogram: %w", err)
	}

	sessionsTotal, err := meter.Int64Counter(
		"claude_sync_sessions_total",
		metric.WithDescription("Total number of synced sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	failedTotal, err := meter.Int64Counter(
		"claude_sync_sessions_failed_total",
		metric.WithDescription("Total number of sessions that failed to sync"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	runsTotal, err := meter.Int64Counter(
		"claude_sync_runs_total",
		metric.WithDescription("Total number of sync runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	return &Exporter{
		provider:      provider,
		meter:         meter,
		tokensTotal:   tokensTotal,
		durationHist:  durationHist,
		messagesHist:  messagesHist,
		sessionsTotal: sessionsTotal,
		failedTotal:   failedTotal,
		runsTotal:     runsTotal,
	}, nil
}

// ExportSession records metrics for one synced session.
func (e *Exporter) ExportSession(ctx context.Context, m *domain.SessionMetadata) error {
	attrs := []attribute.KeyValue{
		attribute.String("machine_id", m.MachineID),
		attribute.String("project_name", m.ProjectName),
		attribute.Bool("agent", m.IsAgentSession),
	}
	if m.Model != nil {
		attrs = append(attrs, attribute.String("model", *m.Model))
	}

	opt := metric.WithAttributes(attrs...)

	e.tokensTotal.Add(ctx, m.TotalTokens(), opt)
	if m.DurationSeconds != nil {
		e.durationHist.Record(ctx, *m.DurationSeconds, opt)
	}
	e.messagesHist.Record(ctx, m.MessageCount, opt)
	e.sessionsTotal.Add(ctx, 1, opt)

	return nil
}

// ExportRun records the outcome of a sync run.
func (e *Exporter) ExportRun(ctx context.Context, r *domain.SyncResult) error {
	opt := metric.WithAttributes(
		attribute.String("machine_id", r.MachineID),
		attribute.Bool("committed", r.Committed),
		attribute.Bool("pushed", r.Pushed),
	)

	e.runsTotal.Add(ctx, 1, opt)
	if r.Failed > 0 {
		e.failedTotal.Add(ctx, int64(r.Failed), opt)
	}
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

var (
	_ ports.MetricsExporter = (*Exporter)(nil)
	_ ports.MetricsExporter = (*NoOpExporter)(nil)
)
