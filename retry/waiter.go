// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gogama/fetchx/request"
)

// A Waiter specifies how long to wait before retrying a failed HTTP request
// attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// The client does not call the Waiter if the policy Decider returned
// false.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// DefaultWaiter waits the request's Config.RetryDelay, or
// request.DefaultRetryDelay if it is not set.
var DefaultWaiter Waiter = configuredWaiter{}

type configuredWaiter struct{}

func (configuredWaiter) Wait(e *request.Execution) time.Duration {
	if e.Config == nil {
		return request.DefaultRetryDelay
	}
	return e.Config.RetryWait()
}

// NewFixedWaiter constructs a Waiter that always returns the given
// duration.
//
// Use NewFixedWaiter to obtain a constant retry backoff.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter returns a Waiter that doubles the wait after every
// failed attempt, starting from base and capped at max. A zero base
// starts from the request's configured retry delay.
//
// A non-zero seed enables "equal jitter": each wait is drawn uniformly
// from the upper half of the exponential ceiling, so concurrent
// executions retrying the same endpoint spread out without any wait
// collapsing to zero. With a zero seed the ceiling itself is returned.
func NewExpWaiter(base, max time.Duration, seed int64) Waiter {
	if base < 0 {
		panic("fetchx/retry: negative base")
	}
	if max <= 0 || max < base {
		panic("fetchx/retry: max must be positive and at least base")
	}
	w := &expWaiter{base: base, max: max}
	if seed != 0 {
		w.rand = rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	}
	return w
}

type expWaiter struct {
	base time.Duration
	max  time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	ceil := w.ceil(e)
	if w.rand == nil || ceil < 2 {
		return ceil
	}
	half := ceil / 2
	w.mu.Lock()
	defer w.mu.Unlock()
	return half + time.Duration(w.rand.Int64N(int64(ceil-half)+1))
}

func (w *expWaiter) ceil(e *request.Execution) time.Duration {
	base := w.base
	if base == 0 {
		base = DefaultWaiter.Wait(e)
	}
	if base >= w.max {
		return w.max
	}
	for i := 0; i < e.Attempt; i++ {
		base *= 2
		if base >= w.max {
			return w.max
		}
	}
	return base
}
