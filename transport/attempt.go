// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/gogama/fetchx/request"
)

// An Attempt settles one attempt at most once.
//
// Create it with NewAttempt, arm the watchers the backend needs with
// WatchTimeout and WatchContext, start the transport, and block in
// Wait. The transport reports its outcome with Resolve or Reject; the
// watchers Reject on timeout or cancellation. The first call wins.
type Attempt struct {
	fin   *request.Finalized
	clock clock.Clock
	abort func()

	once sync.Once
	done chan struct{}
	resp *request.Response
	err  *request.Error

	mu       sync.Mutex
	stops    []func()
	tornDown bool
}

// NewAttempt returns an unsettled Attempt for fin. The abort function,
// which may be nil, is called once if the attempt is rejected; it
// should tear down the in-flight transport. A nil clk means the wall
// clock.
func NewAttempt(fin *request.Finalized, clk clock.Clock, abort func()) *Attempt {
	if clk == nil {
		clk = clock.New()
	}
	return &Attempt{
		fin:   fin,
		clock: clk,
		abort: abort,
		done:  make(chan struct{}),
	}
}

// WatchTimeout rejects the attempt with a timeout error once d elapses.
// A non-positive d is ignored.
func (a *Attempt) WatchTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	t := a.clock.AfterFunc(d, func() {
		a.Reject(request.NewTimeoutError(a.fin, d))
	})
	a.addStop(func() { t.Stop() })
}

// WatchContext rejects the attempt with an abort error once ctx is
// done. An already-done ctx rejects immediately.
func (a *Attempt) WatchContext(ctx context.Context) {
	if ctx.Done() == nil {
		return
	}
	stop := context.AfterFunc(ctx, func() {
		a.Reject(request.NewAbortError(a.fin, context.Cause(ctx)))
	})
	a.addStop(func() { stop() })
}

func (a *Attempt) addStop(stop func()) {
	a.mu.Lock()
	if a.tornDown {
		a.mu.Unlock()
		stop()
		return
	}
	a.stops = append(a.stops, stop)
	a.mu.Unlock()
}

// Resolve settles the attempt successfully. It reports whether this
// call settled the attempt.
func (a *Attempt) Resolve(resp *request.Response) bool {
	won := false
	a.once.Do(func() {
		a.resp = resp
		won = true
	})
	if won {
		a.teardown()
		close(a.done)
	}
	return won
}

// Reject settles the attempt with err and aborts the transport. It
// reports whether this call settled the attempt.
func (a *Attempt) Reject(err *request.Error) bool {
	won := false
	a.once.Do(func() {
		a.err = err
		won = true
	})
	if won {
		a.teardown()
		if a.abort != nil {
			a.abort()
		}
		close(a.done)
	}
	return won
}

func (a *Attempt) teardown() {
	a.mu.Lock()
	stops := a.stops
	a.stops = nil
	a.tornDown = true
	a.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// Settled reports whether Resolve or Reject has won.
func (a *Attempt) Settled() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Done is closed once the attempt is settled.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt is settled and returns its outcome.
func (a *Attempt) Wait() (*request.Response, error) {
	<-a.done
	if a.err != nil {
		return nil, a.err
	}
	return a.resp, nil
}
