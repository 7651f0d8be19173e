package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
	"google.golang.org/grpc"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	conn *grpc.ClientConn
}

// NewTelemetry initializes all OpenTelemetry components. With export disabled
// spans stay in-process and metrics are only served through Prometheus.
func NewTelemetry(ctx context.Context, cfg *config.OTLPConfig, logCfg *config.LogConfig, out io.Writer) (*Telemetry, error) {
	logger := initLogger(cfg, ParseLevel(logCfg.Level), out)

	if !cfg.Enabled {
		return newLocalTelemetry(ctx, logger)
	}

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("service_name", cfg.ServiceName),
	)

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	conn, err := dialCollector(cfg)
	if err != nil {
		return nil, err
	}

	tp, err := initTracerProvider(ctx, conn, res)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	otel.SetTracerProvider(tp)
	logger.Info("Tracer provider initialized successfully")

	registry := newRegistry()
	mp, err := initMeterProvider(ctx, conn, res, registry)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	otel.SetMeterProvider(mp)
	logger.Info("Meter provider initialized successfully (OTLP + Prometheus exporters)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
		conn:           conn,
	}, nil
}

// NewNoOpTelemetry creates a telemetry instance that exports nothing and
// logs to out. Used by tests and tooling commands.
func NewNoOpTelemetry(out io.Writer) *Telemetry {
	logger := slog.New(&traceContextHandler{
		handler: slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	t, _ := newLocalTelemetry(context.Background(), logger)
	return t
}

func newLocalTelemetry(ctx context.Context, logger *slog.Logger) (*Telemetry, error) {
	tp := sdktrace.NewTracerProvider()

	registry := newRegistry()
	mp, err := initMeterProvider(ctx, nil, nil, registry)
	if err != nil {
		mp = metric.NewMeterProvider()
	}

	logger.Debug("Telemetry initialized in local mode (export disabled)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
	}, err
}

// Shutdown flushes and stops every telemetry component, reporting all failures
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	err := multierr.Combine(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	)
	if t.conn != nil {
		err = multierr.Append(err, t.conn.Close())
	}

	if err != nil {
		t.Logger.Error("Failed to shutdown telemetry", slog.String("error", err.Error()))
		return err
	}

	t.Logger.Info("OpenTelemetry shutdown successfully")
	return nil
}
