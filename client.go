// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/logger"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/retry"
	"github.com/gogama/fetchx/timeout"
	"github.com/gogama/fetchx/transport"
	"github.com/gogama/fetchx/transport/browser"
	"github.com/gogama/fetchx/transport/server"
)

// Response is the outcome of a successful request.
type Response = request.Response

// Error is the single error type returned by the client.
type Error = request.Error

// DefaultClient is the Client used by the package-level request
// helpers when given a nil Doer.
var DefaultClient = &Client{}

var emptyHandlers = HandlerGroup{}

// A Client is an HTTP client with retry support. Its zero value is a
// valid configuration.
//
// The zero value client uses the backend returned by DefaultBackend,
// request.GlobalDefaults for default values, retry.DefaultPolicy as the
// retry policy, timeout.DefaultPolicy as the timeout policy, and an
// empty handler group.
//
// Client is safe for concurrent use by multiple goroutines. Each call
// owns its attempts, which run strictly one after another.
//
// On top of the single attempt performed by its Backend, Client adds:
//
// • finalization of each attempt against a fresh snapshot of the
// default values;
//
// • retries of failed attempts using a customizable retry policy, with
// a cancellable wait between attempts;
//
// • per-attempt timeouts using a customizable timeout policy;
//
// • optional client-side rate limiting of attempts; and
//
// • handler functions invoked at designated plug-in points within the
// attempt/retry loop.
type Client struct {
	// Backend performs single attempts.
	//
	// If Backend is nil, DefaultBackend() is used.
	Backend transport.Backend
	// Defaults holds the default base URL, headers and timeout.
	//
	// If Defaults is nil, request.GlobalDefaults is used.
	Defaults *request.Defaults
	// RetryPolicy decides when to retry failed attempts and how long
	// to wait before retrying.
	//
	// If RetryPolicy is nil, retry.DefaultPolicy is used.
	RetryPolicy retry.Policy
	// TimeoutPolicy sets the timeouts of individual attempts.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during an execution.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Logger receives attempt and retry diagnostics.
	//
	// If Logger is nil, nothing is logged.
	Logger logger.Logger
	// Clock times executions and retry waits.
	//
	// If Clock is nil, the wall clock is used.
	Clock clock.Clock
	// Limiter, if set, is waited on before every attempt.
	Limiter *rate.Limiter
}

// DefaultBackend returns the backend for the current platform: the
// browser backend under GOOS=js, and the server backend otherwise.
func DefaultBackend() transport.Backend {
	if browserPlatform {
		return &browser.Backend{}
	}
	return &server.Backend{}
}

var defaultBackend = DefaultBackend()

// Do executes cfg and returns the execution state after the final
// attempt, as determined by the retry policy.
//
// Each attempt finalizes cfg against a fresh snapshot of the client's
// default values, so defaults changed between attempts are picked up.
// The cancellation signal is cfg.Context(): cancelling it aborts the
// current attempt, or the wait before the next one, and ends the
// execution with an ECONNABORTED error.
//
// The returned Execution is never nil. If an error is returned it is
// an *Error, the Err field of the Execution references the same error,
// and the Response field is nil. A response whose status fails
// validation is an error, and the response is then available through
// the error.
func (c *Client) Do(cfg *request.Config) (*request.Execution, error) {
	if cfg == nil {
		panic("fetchx: nil config")
	}

	e := &request.Execution{
		Config: cfg,
	}
	ctx := cfg.Context()
	clk := c.clock()
	log := c.logger()

	retryPolicy := c.RetryPolicy
	if retryPolicy == nil {
		retryPolicy = retry.DefaultPolicy
	}

	handlers := c.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(BeforeExecutionStart, e)
	e.Start = clk.Now()

	for {
		c.attempt(ctx, e, handlers, log)
		if e.Timeout() {
			e.AttemptTimeouts++
			handlers.run(AfterAttemptTimeout, e)
		}
		handlers.run(AfterAttempt, e)
		if e.Err == nil {
			break
		}
		if ctx.Err() != nil {
			handlers.run(AfterCancel, e)
			break
		}
		if !retryPolicy.Decide(e) {
			break
		}
		wait := retryPolicy.Wait(e)
		handlers.run(BeforeRetryWait, e)
		log.Warn().
			Err(e.Err).
			Int("attempt", e.Attempt).
			Dur("wait", wait).
			Msg("fetchx: retrying failed attempt")
		if !sleep(ctx, clk, wait) {
			e.Err = request.NewAbortError(e.Request, context.Cause(ctx))
			e.Response = nil
			handlers.run(AfterCancel, e)
			break
		}
		e.Response = nil
		e.Attempt++
	}

	e.End = clk.Now()
	handlers.run(AfterExecutionEnd, e)
	if e.Err != nil {
		log.Debug().
			Err(e.Err).
			Int("attempts", e.Attempt+1).
			Dur("duration", e.Duration()).
			Msg("fetchx: execution failed")
		return e, e.Err
	}
	log.Debug().
		Int("status", e.Response.Status).
		Int("attempts", e.Attempt+1).
		Dur("duration", e.Duration()).
		Msg("fetchx: execution complete")
	return e, nil
}

func (c *Client) attempt(ctx context.Context, e *request.Execution, handlers *HandlerGroup, log logger.Logger) {
	fin, err := request.Finalize(e.Config, c.defaults().Snapshot())
	if err != nil {
		e.Request = nil
		e.Response = nil
		e.Err = err
		return
	}
	e.Request = fin

	timeoutPolicy := c.TimeoutPolicy
	if timeoutPolicy == nil {
		timeoutPolicy = timeout.DefaultPolicy
	}
	fin.Timeout = timeoutPolicy.Timeout(e)
	e.Err = nil

	handlers.run(BeforeAttempt, e)
	if c.Limiter != nil {
		if err = c.Limiter.Wait(ctx); err != nil {
			e.Response = nil
			e.Err = request.NewAbortError(e.Request, err)
			return
		}
	}

	backend := c.backend()
	log.Debug().
		Str("backend", backend.Name()).
		Str("method", e.Request.Method).
		Str("url", e.Request.URL).
		Int("attempt", e.Attempt).
		Dur("timeout", e.Request.Timeout).
		Msg("fetchx: starting attempt")
	resp, err := backend.Execute(ctx, e.Request, e.Config)
	if err != nil {
		e.Response = nil
		e.Err = err
		return
	}
	e.Response = resp
	e.Err = nil
}

func sleep(ctx context.Context, clk clock.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := clk.Timer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Request executes cfg against url and returns the final response. A
// nil cfg means a GET with no other settings. The cfg is not modified.
func (c *Client) Request(url string, cfg *request.Config) (*Response, error) {
	return Request(c, url, cfg)
}

// Get issues a GET to url, using the same policies followed by Do.
func (c *Client) Get(url string) (*Response, error) {
	return Get(c, url)
}

// Post issues a POST to url with body, using the same policies followed
// by Do. See codec.From for the accepted body values.
func (c *Client) Post(url string, body any) (*Response, error) {
	return Post(c, url, body)
}

// Put issues a PUT to url with body, using the same policies followed
// by Do.
func (c *Client) Put(url string, body any) (*Response, error) {
	return Put(c, url, body)
}

// Patch issues a PATCH to url with body, using the same policies
// followed by Do.
func (c *Client) Patch(url string, body any) (*Response, error) {
	return Patch(c, url, body)
}

// Delete issues a DELETE to url, using the same policies followed by
// Do.
func (c *Client) Delete(url string) (*Response, error) {
	return Delete(c, url)
}

// CloseIdleConnections invokes the same method on the client's backend,
// if it has one.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.backend().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) backend() transport.Backend {
	if c.Backend == nil {
		return defaultBackend
	}
	return c.Backend
}

func (c *Client) defaults() *request.Defaults {
	if c.Defaults == nil {
		return request.GlobalDefaults
	}
	return c.Defaults
}

func (c *Client) clock() clock.Clock {
	if c.Clock == nil {
		return clock.New()
	}
	return c.Clock
}

func (c *Client) logger() logger.Logger {
	if c.Logger == nil {
		return nopLogger
	}
	return c.Logger
}

var nopLogger = logger.Nop()

func newConfig(method, url string, body any) *request.Config {
	cfg := request.NewConfig(method, url)
	cfg.Body = codec.From(body)
	return cfg
}
