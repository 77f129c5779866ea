// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/fetchx/request"
)

// A Policy decides the timeout of the next attempt.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout for the next attempt. Zero means no
	// timeout.
	//
	// When the client calls Timeout, e.Request holds the attempt's
	// finalized request and, on a retry, e.Err still holds the error
	// of the previous attempt.
	Timeout(e *request.Execution) time.Duration
}

// Configured returns the attempt's resolved timeout, Request.Timeout,
// which comes from Config.Timeout or else the default timeout.
var Configured Policy = configured{}

// DefaultPolicy is the default timeout policy, Configured.
var DefaultPolicy = Configured

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(0)

type configured struct{}

func (configured) Timeout(e *request.Execution) time.Duration {
	if e.Request == nil {
		return 0
	}
	return e.Request.Timeout
}

// Fixed constructs a timeout policy that always returns d.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Use Adaptive if the remote service often exhibits one-off slow
// responses that are cured by quickly timing out and retrying, but you
// also need to protect the service from retry storms when it goes
// through a burst of slowness.
//
// Parameter usual is the timeout for an initial attempt and for any
// retry where the preceding attempt did not time out.
//
// Parameter after contains the timeouts used when the previous attempt
// timed out: after[0] after the first timeout of the execution,
// after[1] after the second, and so on. Once the execution has more
// timeouts than after has elements, the last element is used.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p uses 200 milliseconds as the usual timeout but if
// the preceding attempt was the first to time out, it uses 1 second;
// and if the preceding attempt timed out and was not the first, it uses
// 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	if !e.Timeout() {
		return p[0]
	}

	i := e.AttemptTimeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
