// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/fetchx/request"
)

// A Policy controls if and how retries are done. After every failed
// attempt, the Policy decides whether to retry and, if so, how long to
// wait first.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait times.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries, whatever the request's
// Config.Retry says.
var Never Policy = policy{Times(0), DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("fetchx/retry: nil decider")
	}
	if w == nil {
		panic("fetchx/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(e *request.Execution) bool {
	return p.decider.Decide(e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}
