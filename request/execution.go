// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"net/http"
	"time"

	"github.com/gogama/fetchx/transient"
)

// An Execution represents the state of a logical request across all of
// its attempts.
//
// The client creates an Execution when a Config is executed and updates
// it as attempts are made, finally returning it to the caller. Retry and
// timeout policies and event handlers receive the same Execution.
//
// Policies and handlers may store values using SetValue and read them
// back with Value, but should treat the exported fields as read-only.
// The exception is BeforeAttempt handlers, which may adjust the Request
// before it is sent (for example to add a tracing header).
type Execution struct {
	// Config is the logical request being executed. It is never nil.
	Config *Config

	// Start is the start time of the execution.
	Start time.Time

	// End is the end time of the execution. It is the zero value until
	// the execution ends.
	End time.Time

	// Attempt is the zero-based number of the current attempt.
	//
	// When the execution is ended, Attempt contains the number of the
	// last attempt, so an execution that ends after an initial attempt
	// plus two retries has an Attempt of 2.
	Attempt int

	// AttemptTimeouts counts the attempts that timed out.
	AttemptTimeouts int

	// Request is the finalized request of the current or most recent
	// attempt. It is nil if finalization failed.
	Request *Finalized

	// Response is the response of the most recent successful attempt.
	Response *Response

	// Err is the error of the most recent attempt, always an *Error
	// when non-nil. Once the execution has ended it is the error
	// returned to the caller.
	Err error

	values map[any]any
}

// StatusCode returns the status code of the most recent response, or
// zero if there is none. A response carried by a failure counts.
func (e *Execution) StatusCode() int {
	if r := e.response(); r != nil {
		return r.Status
	}
	return 0
}

// Header returns the headers of the most recent response, or nil.
func (e *Execution) Header() http.Header {
	if r := e.response(); r != nil {
		return r.Header
	}
	return nil
}

func (e *Execution) response() *Response {
	if e.Response != nil {
		return e.Response
	}
	if f := e.Failure(); f != nil {
		return f.Response
	}
	return nil
}

// Failure returns Err as an *Error, or nil.
func (e *Execution) Failure() *Error {
	var f *Error
	if errors.As(e.Err, &f) {
		return f
	}
	return nil
}

// Duration returns the duration of the execution so far, or its total
// duration once ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently holds an attempt timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue stores arbitrary handler data in the execution, replacing
// any value already stored under key. The key must be comparable.
// Handlers should use an unexported key type to avoid collisions.
func (e *Execution) SetValue(key, value any) {
	if e.values == nil {
		e.values = make(map[any]any)
	}
	e.values[key] = value
}

// Value returns the value stored under key, or nil.
func (e *Execution) Value(key any) any {
	return e.values[key]
}
