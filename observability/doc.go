// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package observability provides fetchx event handlers which record
// OpenTelemetry metrics and spans, propagate W3C trace context, and tag
// requests with a stable X-Request-ID.
//
// Each component installs itself into a fetchx.HandlerGroup:
//
//	handlers := &fetchx.HandlerGroup{}
//	metrics, err := observability.NewMetrics(nil)
//	...
//	metrics.Install(handlers)
//	observability.NewTracing(nil, nil).Install(handlers)
//	observability.RequestID{}.Install(handlers)
//	client := &fetchx.Client{Handlers: handlers}
package observability
