package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/cloudconsole"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Dispatcher metrics
	DispatchTotal         metric.Int64Counter
	DispatchRejectedTotal metric.Int64Counter
	DispatchDuration      metric.Float64Histogram

	// Store metrics
	StoreSyncTotal     metric.Int64Counter
	StoreSnapshotSize  metric.Int64Gauge
	ChangeListenerRuns metric.Int64Counter

	// Loop metrics
	LoopTasksTotal    metric.Int64Counter
	LoopPanicsTotal   metric.Int64Counter
	LoopQueueRejected metric.Int64Counter

	// API client metrics
	ClientRequestsTotal metric.Int64Counter
	ClientRetriesTotal  metric.Int64Counter

	// API server metrics
	ServerNotModifiedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.DispatchTotal, _ = meter.Int64Counter(
		"cloudconsole.dispatch.total",
		metric.WithDescription("Total number of actions dispatched"),
		metric.WithUnit("{action}"),
	)

	m.DispatchRejectedTotal, _ = meter.Int64Counter(
		"cloudconsole.dispatch.rejected.total",
		metric.WithDescription("Total number of dispatches rejected (re-entrant or malformed)"),
		metric.WithUnit("{action}"),
	)

	m.DispatchDuration, _ = meter.Float64Histogram(
		"cloudconsole.dispatch.duration",
		metric.WithDescription("Time spent running all callbacks for one action"),
		metric.WithUnit("ms"),
	)

	m.StoreSyncTotal, _ = meter.Int64Counter(
		"cloudconsole.store.sync.total",
		metric.WithDescription("Total number of snapshots installed by stores"),
		metric.WithUnit("{snapshot}"),
	)

	m.StoreSnapshotSize, _ = meter.Int64Gauge(
		"cloudconsole.store.snapshot.size",
		metric.WithDescription("Number of entities in the latest snapshot"),
		metric.WithUnit("{entity}"),
	)

	m.ChangeListenerRuns, _ = meter.Int64Counter(
		"cloudconsole.store.listener.runs.total",
		metric.WithDescription("Total number of change listener invocations"),
		metric.WithUnit("{call}"),
	)

	m.LoopTasksTotal, _ = meter.Int64Counter(
		"cloudconsole.loop.tasks.total",
		metric.WithDescription("Total number of tasks executed by the event loop"),
		metric.WithUnit("{task}"),
	)

	m.LoopPanicsTotal, _ = meter.Int64Counter(
		"cloudconsole.loop.panics.total",
		metric.WithDescription("Total number of tasks that panicked"),
		metric.WithUnit("{task}"),
	)

	m.LoopQueueRejected, _ = meter.Int64Counter(
		"cloudconsole.loop.queue.rejected.total",
		metric.WithDescription("Total number of tasks rejected because the queue was full"),
		metric.WithUnit("{task}"),
	)

	m.ClientRequestsTotal, _ = meter.Int64Counter(
		"cloudconsole.client.requests.total",
		metric.WithDescription("Total number of API requests sent"),
		metric.WithUnit("{request}"),
	)

	m.ClientRetriesTotal, _ = meter.Int64Counter(
		"cloudconsole.client.retries.total",
		metric.WithDescription("Total number of API request retries"),
		metric.WithUnit("{request}"),
	)

	m.ServerNotModifiedTotal, _ = meter.Int64Counter(
		"cloudconsole.server.not_modified.total",
		metric.WithDescription("Total number of conditional GETs answered with 304"),
		metric.WithUnit("{response}"),
	)

	return m
}
