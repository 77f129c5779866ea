// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/progress"
)

const (
	nilCtxMsg = "fetchx/request: nil context"

	// DefaultRetryDelay is the wait between attempts when a Config
	// does not set RetryDelay.
	DefaultRetryDelay = 300 * time.Millisecond
)

// A Config describes a logical HTTP request. It is treated as read-only
// once the first attempt begins.
type Config struct {
	// Method specifies the HTTP method. An empty string means GET.
	Method string

	// URL is either an absolute http or https URL, or a path which is
	// joined to the base URL.
	URL string

	// BaseURL overrides the base URL from the defaults for this request
	// only.
	BaseURL string

	// Header holds per-request headers. They are merged over the
	// default headers, key by key, case-insensitively.
	Header http.Header

	// Body is the request payload. The zero value sends no body.
	Body codec.Body

	// Params are merged into the URL query string, replacing any
	// existing values for the same keys.
	Params Params

	// Timeout bounds each attempt. Zero inherits the default timeout
	// and a negative value means no timeout.
	Timeout time.Duration

	// Retry is the number of additional attempts allowed after a
	// retryable failure.
	Retry int

	// RetryDelay is the wait between attempts. Zero or negative means
	// DefaultRetryDelay.
	RetryDelay time.Duration

	// ResponseType is the decoding hint. Empty means codec.ResponseJSON.
	ResponseType codec.ResponseType

	// OnUploadProgress receives request body progress.
	OnUploadProgress progress.Func

	// OnDownloadProgress receives response body progress.
	OnDownloadProgress progress.Func

	// ValidateStatus decides which status codes succeed. If nil, codes
	// 200 through 299 succeed.
	ValidateStatus func(status int) bool

	// RetryIf, if set, replaces the built-in decision of which failures
	// are retryable. The attempt budget set by Retry still applies.
	RetryIf func(err *Error) bool

	// ctx cancels the logical request. It should only be changed by
	// copying the whole Config using WithContext.
	ctx context.Context
}

// NewConfig wraps NewConfigWithContext using the background context.
func NewConfig(method, url string) *Config {
	return NewConfigWithContext(context.Background(), method, url)
}

// NewConfigWithContext returns a new Config for the given method and URL
// whose cancellation is controlled by ctx, which may not be nil.
func NewConfigWithContext(ctx context.Context, method, url string) *Config {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	return &Config{
		ctx:    ctx,
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
}

// Context returns the config's context. The returned context is always
// non-nil; it defaults to the background context.
func (c *Config) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of c with its context changed to
// ctx, which must be non-nil.
//
// Cancelling the context aborts the attempt in flight and any wait
// between attempts. The request then fails with CodeAborted.
func (c *Config) WithContext(ctx context.Context) *Config {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	c2 := new(Config)
	*c2 = *c
	c2.ctx = ctx
	return c2
}

// Clone returns a copy of c whose Header and Params may be modified
// without affecting c.
func (c *Config) Clone() *Config {
	c2 := new(Config)
	*c2 = *c
	c2.Header = c.Header.Clone()
	if c.Params != nil {
		c2.Params = make(Params, len(c.Params))
		for k, v := range c.Params {
			c2.Params[k] = v
		}
	}
	return c2
}

// SetBasicAuth sets the Authorization header to use HTTP Basic
// Authentication with the provided username and password.
func (c *Config) SetBasicAuth(username, password string) {
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	c.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// RetryWait returns the effective wait between attempts.
func (c *Config) RetryWait() time.Duration {
	if c.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return c.RetryDelay
}

// StatusOK applies ValidateStatus, or the default 2xx rule. A nil
// Config uses the default rule.
func (c *Config) StatusOK(status int) bool {
	if c != nil && c.ValidateStatus != nil {
		return c.ValidateStatus(status)
	}
	return status >= 200 && status < 300
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}
