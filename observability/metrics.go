// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/request"
)

// Meter name for client metrics.
const meterName = "github.com/gogama/fetchx"

// Metric names.
const (
	metricAttemptDuration   = "http.client.request.duration"
	metricExecutionDuration = "fetchx.client.execution.duration"
	metricAttempts          = "fetchx.client.attempts"
	metricRetries           = "fetchx.client.retries"
	metricAttemptTimeouts   = "fetchx.client.attempt_timeouts"
	metricCancellations     = "fetchx.client.cancellations"
)

// Duration histogram buckets recommended for HTTP latency.
var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
}

type attemptStartKey struct{}

// Metrics records attempt and execution metrics.
type Metrics struct {
	attemptDuration   metric.Float64Histogram
	executionDuration metric.Float64Histogram
	attempts          metric.Int64Counter
	retries           metric.Int64Counter
	attemptTimeouts   metric.Int64Counter
	cancellations     metric.Int64Counter
}

// NewMetrics creates the instruments from mp. A nil mp means the global
// meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	var m Metrics
	var err, errs error
	m.attemptDuration, err = meter.Float64Histogram(
		metricAttemptDuration,
		metric.WithDescription("Duration of single HTTP request attempts"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	errs = errors.Join(errs, err)
	m.executionDuration, err = meter.Float64Histogram(
		metricExecutionDuration,
		metric.WithDescription("Duration of logical requests including retries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	errs = errors.Join(errs, err)
	m.attempts, err = meter.Int64Counter(
		metricAttempts,
		metric.WithDescription("Number of request attempts"),
		metric.WithUnit("{attempt}"),
	)
	errs = errors.Join(errs, err)
	m.retries, err = meter.Int64Counter(
		metricRetries,
		metric.WithDescription("Number of retries scheduled"),
		metric.WithUnit("{retry}"),
	)
	errs = errors.Join(errs, err)
	m.attemptTimeouts, err = meter.Int64Counter(
		metricAttemptTimeouts,
		metric.WithDescription("Number of attempts ended by their timeout"),
		metric.WithUnit("{attempt}"),
	)
	errs = errors.Join(errs, err)
	m.cancellations, err = meter.Int64Counter(
		metricCancellations,
		metric.WithDescription("Number of executions cancelled by the caller"),
		metric.WithUnit("{execution}"),
	)
	errs = errors.Join(errs, err)
	if errs != nil {
		return nil, errs
	}
	return &m, nil
}

// Install adds the metric handlers to g.
func (m *Metrics) Install(g *fetchx.HandlerGroup) {
	h := fetchx.HandlerFunc(m.handle)
	g.PushBack(fetchx.BeforeAttempt, h)
	g.PushBack(fetchx.AfterAttemptTimeout, h)
	g.PushBack(fetchx.AfterAttempt, h)
	g.PushBack(fetchx.BeforeRetryWait, h)
	g.PushBack(fetchx.AfterCancel, h)
	g.PushBack(fetchx.AfterExecutionEnd, h)
}

func (m *Metrics) handle(evt fetchx.Event, e *request.Execution) {
	ctx := e.Config.Context()
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	switch evt {
	case fetchx.BeforeAttempt:
		e.SetValue(attemptStartKey{}, time.Now())
	case fetchx.AfterAttemptTimeout:
		m.attemptTimeouts.Add(ctx, 1, metric.WithAttributes(outcomeAttributes(e)...))
	case fetchx.AfterAttempt:
		attrs := metric.WithAttributes(outcomeAttributes(e)...)
		m.attempts.Add(ctx, 1, attrs)
		if start, ok := e.Value(attemptStartKey{}).(time.Time); ok && e.Request != nil {
			m.attemptDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	case fetchx.BeforeRetryWait:
		m.retries.Add(ctx, 1, metric.WithAttributes(outcomeAttributes(e)...))
	case fetchx.AfterCancel:
		m.cancellations.Add(ctx, 1, metric.WithAttributes(outcomeAttributes(e)...))
	case fetchx.AfterExecutionEnd:
		m.executionDuration.Record(ctx, e.Duration().Seconds(), metric.WithAttributes(outcomeAttributes(e)...))
	}
}
