package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(context.Context) error

// NoopShutdown is returned when telemetry is disabled or failed to start.
func NoopShutdown(context.Context) error { return nil }

type config struct {
	sampleRatio    float64
	metricInterval time.Duration
}

// Option tunes InitTelemetry.
type Option func(*config)

// WithSampleRatio samples the given fraction of root spans. Child spans follow
// their parent.
func WithSampleRatio(ratio float64) Option {
	return func(c *config) {
		if ratio >= 0 && ratio <= 1 {
			c.sampleRatio = ratio
		}
	}
}

// WithMetricInterval sets how often metrics are exported.
func WithMetricInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.metricInterval = d
		}
	}
}

type provider struct {
	name  string
	start func(context.Context, *resource.Resource, config) (ShutdownFunc, error)
}

var providers = []provider{
	{name: "trace", start: startTracing},
	{name: "metric", start: startMetrics},
}

// InitTelemetry installs OTLP/gRPC trace and metric providers as the otel
// globals. Exporters read OTEL_EXPORTER_OTLP_* from the environment.
//
// A provider that fails to start is logged and skipped, so the server and
// console keep running with whatever could be started.
func InitTelemetry(ctx context.Context, serviceName, version string, opts ...Option) (ShutdownFunc, error) {
	cfg := config{
		sampleRatio:    1,
		metricInterval: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var started []namedShutdown
	for _, p := range providers {
		fn, err := p.start(ctx, res, cfg)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.name).Msg("Failed to start telemetry provider")
			continue
		}
		started = append(started, namedShutdown{name: p.name, fn: fn})
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("service", serviceName).
		Str("version", version).
		Int("providers", len(started)).
		Msg("OpenTelemetry initialized")

	return shutdownAll(started), nil
}

type namedShutdown struct {
	name string
	fn   ShutdownFunc
}

// shutdownAll stops providers in reverse start order and joins their errors.
func shutdownAll(started []namedShutdown) ShutdownFunc {
	return func(ctx context.Context) error {
		var errs []error
		for i := len(started) - 1; i >= 0; i-- {
			if err := started[i].fn(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s shutdown: %w", started[i].name, err))
			}
		}
		return errors.Join(errs...)
	}
}

func startTracing(ctx context.Context, res *resource.Resource, cfg config) (ShutdownFunc, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio))),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// startMetrics exports on a fixed interval. Instruments created through
// GetMetrics before this runs are bound to the global delegate and start
// reporting once the provider is installed.
func startMetrics(ctx context.Context, res *resource.Resource, cfg config) (ShutdownFunc, error) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.metricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}
