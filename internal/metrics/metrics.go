// Package metrics wraps the OpenTelemetry metrics API into the small,
// optional instrumentation surface every fskit component accepts.
// Grounded on gcsfuse's common/otel_metrics.go and
// common/mock_metrics_handle.go: metrics are an injectable handle, never
// a required dependency, and resolve to no-ops when the caller supplies
// no metric.MeterProvider.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Handle is the metrics surface passed into executor's Config and
// copy's Options, and reachable by dirwalk through executor.Metrics.
// A nil *Handle (or one built with NewNoop) records nothing; a zero
// Handle value has no instruments and is not usable.
type Handle struct {
	queueDepth  metric.Int64UpDownCounter
	jobDuration metric.Float64Histogram
	copyTier    metric.Int64Counter
	walkBatches metric.Int64Counter
	walkEntries metric.Int64Counter
}

// New builds a Handle from the given provider. Pass
// noop.NewMeterProvider() (or leave provider nil) to disable
// instrumentation entirely.
func New(provider metric.MeterProvider) (*Handle, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	meter := provider.Meter("github.com/kernelio/fskit")

	queueDepth, err := meter.Int64UpDownCounter("executor_queue_depth",
		metric.WithDescription("current number of jobs waiting in the executor queue"))
	if err != nil {
		return nil, err
	}
	jobDuration, err := meter.Float64Histogram("executor_job_duration_seconds",
		metric.WithDescription("wall time of executor run() closures"))
	if err != nil {
		return nil, err
	}
	copyTier, err := meter.Int64Counter("copy_tier_total",
		metric.WithDescription("copy engine tier attempts by tier and result"))
	if err != nil {
		return nil, err
	}
	walkBatches, err := meter.Int64Counter("dirwalk_batches_total",
		metric.WithDescription("directory iterator batches delivered to the consumer"))
	if err != nil {
		return nil, err
	}
	walkEntries, err := meter.Int64Counter("dirwalk_entries_total",
		metric.WithDescription("directory entries delivered to the consumer"))
	if err != nil {
		return nil, err
	}

	return &Handle{
		queueDepth:  queueDepth,
		jobDuration: jobDuration,
		copyTier:    copyTier,
		walkBatches: walkBatches,
		walkEntries: walkEntries,
	}, nil
}

// NewNoop returns a Handle that records nothing. Safe for use as a
// config default.
func NewNoop() *Handle {
	h, _ := New(noop.NewMeterProvider())
	return h
}

func (h *Handle) QueueDepthAdd(ctx context.Context, delta int64) {
	if h == nil {
		return
	}
	h.queueDepth.Add(ctx, delta)
}

func (h *Handle) ObserveJobDuration(ctx context.Context, seconds float64) {
	if h == nil {
		return
	}
	h.jobDuration.Record(ctx, seconds)
}

// CopyTierResult names the outcome recorded for a copy-tier attempt.
type CopyTierResult string

const (
	CopyTierOK        CopyTierResult = "ok"
	CopyTierRetryNext CopyTierResult = "retry-next-tier"
	CopyTierHardFail  CopyTierResult = "hard-fail"
)

func (h *Handle) RecordCopyTier(ctx context.Context, tier string, result CopyTierResult) {
	if h == nil {
		return
	}
	h.copyTier.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("result", string(result)),
	))
}

func (h *Handle) RecordWalkBatch(ctx context.Context, entries int64) {
	if h == nil {
		return
	}
	h.walkBatches.Add(ctx, 1)
	h.walkEntries.Add(ctx, entries)
}
