// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in deciders Configured, Retryable and TransientErr and
// the constructors Times, StatusCode, and Before; or implement your own.
// Use DeciderFunc to convert an ordinary function into a Decider, and to
// compose deciders with DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// Configured allows retries while the zero-based attempt number is less
// than the request's Config.Retry.
var Configured DeciderFunc = configured

// Retryable allows a retry if the most recent attempt failed with a
// retryable error. If the request has a Config.RetryIf predicate, it
// makes the decision; otherwise network failures and attempt timeouts
// are retryable. Cancellations and pre-flight failures are never
// retryable.
var Retryable DeciderFunc = retryable

// DefaultDecider allows Config.Retry retries of retryable failures.
var DefaultDecider = Configured.And(Retryable)

// TransientErr allows a retry if the most recent error is transient
// according to transient.Categorize.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise. g is not
// evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns true
// if either of the two sub-deciders returns true. g is not evaluated if
// f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries
// regardless of the request's Config.Retry.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until d has
// elapsed since the start of the execution.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode constructs a retry decider allowing retries when the most
// recent attempt received a response whose status code is in ss,
// including responses carried by a status validation failure.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func configured(e *request.Execution) bool {
	return e.Config != nil && e.Attempt < e.Config.Retry
}

func retryable(e *request.Execution) bool {
	f := e.Failure()
	if f == nil || f.Canceled() || f.Preflight() {
		return false
	}
	if e.Config != nil && e.Config.RetryIf != nil {
		return e.Config.RetryIf(f)
	}
	return f.Retryable()
}

func transientErr(e *request.Execution) bool {
	return transient.Categorize(e.Err) != transient.Not
}
