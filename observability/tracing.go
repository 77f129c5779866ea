// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/request"
)

// Tracer name for client spans.
const tracerName = "github.com/gogama/fetchx"

type spanKey struct{}

// Tracing records one client span per execution and injects its
// context into the headers of every attempt.
type Tracing struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracing returns a Tracing using tp and prop. Nil arguments mean
// the global tracer provider and propagator.
func NewTracing(tp trace.TracerProvider, prop propagation.TextMapPropagator) *Tracing {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}
	return &Tracing{
		tracer:     tp.Tracer(tracerName),
		propagator: prop,
	}
}

// Install adds the tracing handlers to g.
func (t *Tracing) Install(g *fetchx.HandlerGroup) {
	h := fetchx.HandlerFunc(t.handle)
	g.PushBack(fetchx.BeforeExecutionStart, h)
	g.PushBack(fetchx.BeforeAttempt, h)
	g.PushBack(fetchx.AfterAttempt, h)
	g.PushBack(fetchx.AfterCancel, h)
	g.PushBack(fetchx.AfterExecutionEnd, h)
}

func (t *Tracing) handle(evt fetchx.Event, e *request.Execution) {
	if evt == fetchx.BeforeExecutionStart {
		_, span := t.tracer.Start(e.Config.Context(), "HTTP "+method(e),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attribute.String(attrHTTPRequestMethod, method(e))),
		)
		e.SetValue(spanKey{}, span)
		return
	}

	span, ok := e.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}
	switch evt {
	case fetchx.BeforeAttempt:
		span.SetAttributes(attribute.String(attrURLFull, e.Request.URL))
		if e.Attempt > 0 {
			span.SetAttributes(attribute.Int(attrHTTPResendCount, e.Attempt))
		}
		ctx := trace.ContextWithSpan(context.Background(), span)
		t.propagator.Inject(ctx, propagation.HeaderCarrier(e.Request.Header))
	case fetchx.AfterAttempt:
		if e.Err != nil {
			span.AddEvent("attempt failed", trace.WithAttributes(
				attribute.Int("fetchx.attempt", e.Attempt),
				attribute.String(attrErrorType, errorType(e)),
			))
		}
	case fetchx.AfterCancel:
		span.AddEvent("cancelled")
	case fetchx.AfterExecutionEnd:
		span.SetAttributes(outcomeAttributes(e)...)
		if e.Err != nil {
			span.SetStatus(codes.Error, e.Err.Error())
		}
		span.End()
	}
}
