// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net/http"

	"github.com/gogama/fetchx/request"
)

// A Backend executes exactly one attempt of a finalized request.
//
// Execute must perform the attempt described by fin, honouring
// fin.Timeout and the cancellation of ctx, report progress through the
// callbacks on cfg, and validate the status with cfg.StatusOK. It
// returns either a response or an *request.Error, never both, and never
// retries.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Backend interface {
	Name() string
	Execute(ctx context.Context, fin *request.Finalized, cfg *request.Config) (*request.Response, error)
}

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

// An IdleCloser can close idle keep-alive connections.
type IdleCloser interface {
	CloseIdleConnections()
}
