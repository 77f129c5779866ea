// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/gogama/fetchx/config"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/retry"
	"github.com/gogama/fetchx/transport"
	"github.com/gogama/fetchx/transport/browser"
	"github.com/gogama/fetchx/transport/server"
)

// NewClient returns a Client wired from loaded settings. Log output
// goes to standard error unless a log file is configured. The client
// owns fresh Defaults holding the configured base URL, headers and
// timeout. Requests which leave Config.Retry or Config.RetryDelay
// unset get the configured values.
func NewClient(cfg *config.Config) *Client {
	defaults := request.NewDefaults()
	cfg.Client.Apply(defaults)

	cl := &Client{
		Backend:     newBackend(cfg.Client.Backend),
		Defaults:    defaults,
		RetryPolicy: newRetryPolicy(cfg.Client.Retry, cfg.Client.RetryDelay),
		Logger:      cfg.Log.Logger(os.Stderr),
	}
	if cfg.Client.RateLimit > 0 {
		burst := cfg.Client.RateBurst
		if burst < 1 {
			burst = 1
		}
		cl.Limiter = rate.NewLimiter(rate.Limit(cfg.Client.RateLimit), burst)
	}
	return cl
}

func newBackend(name string) transport.Backend {
	switch name {
	case config.BackendServer:
		return &server.Backend{}
	case config.BackendBrowser:
		return &browser.Backend{}
	default:
		return DefaultBackend()
	}
}

func newRetryPolicy(budget int, delay time.Duration) retry.Policy {
	if budget == 0 && delay <= 0 {
		return retry.DefaultPolicy
	}
	decider := retry.DeciderFunc(func(e *request.Execution) bool {
		n := e.Config.Retry
		if n == 0 {
			n = budget
		}
		return e.Attempt < n
	})
	return retry.NewPolicy(decider.And(retry.Retryable), retryWaiter(delay))
}

type retryWaiter time.Duration

func (w retryWaiter) Wait(e *request.Execution) time.Duration {
	if e.Config.RetryDelay > 0 || w <= 0 {
		return e.Config.RetryWait()
	}
	return time.Duration(w)
}
