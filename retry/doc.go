// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides policies deciding whether a failed attempt is
// retried and how long to wait before retrying it.
//
// The DefaultPolicy follows the request's own settings: it allows
// Config.Retry retries of network failures and attempt timeouts (or of
// whatever Config.RetryIf accepts), waiting Config.RetryDelay between
// attempts. Status failures, pre-flight failures, and cancellations
// are never retried by default.
//
// A Policy can be assembled with NewPolicy from a Decider and a Waiter.
// Both have constructors for common cases:
//
//	decider := retry.Configured.
//	               And(retry.Before(5 * time.Second)).
//	               And(retry.StatusCode(503).Or(retry.Retryable))
//	waiter := retry.NewExpWaiter(0, 2*time.Second, time.Now().UnixNano())
//	policy := retry.NewPolicy(decider, waiter)
package retry
