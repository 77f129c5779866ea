// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/gogama/fetchx/codec"
)

// A Finalized is the fully resolved request for one attempt. Every
// field is computed from a Config and a DefaultValues snapshot by
// Finalize and is never changed afterward, except by BeforeAttempt
// event handlers.
type Finalized struct {
	// Method is the upper-case HTTP method.
	Method string
	// URL is the absolute URL, including query and fragment.
	URL string
	// Header holds the merged request headers.
	Header http.Header
	// Body is the encoded request body.
	Body *codec.Encoded
	// ContentLength is the body size, 0 for no body, or -1 if unknown.
	ContentLength int64
	// Timeout is the effective attempt timeout. Zero means none.
	Timeout time.Duration
	// ResponseType is the decoding hint, never empty.
	ResponseType codec.ResponseType
}

// Finalize resolves cfg against the defaults d.
//
// Headers are merged in increasing precedence: default headers,
// per-request headers, and finally the headers computed by the body
// codec. A caller-supplied Content-Type survives for JSON bodies.
//
// Finalize performs no I/O. Its failures have CodeInvalidURL,
// CodeBodyStringify, or CodeBadOption and are never retried.
func Finalize(cfg *Config, d DefaultValues) (*Finalized, error) {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, badOption("Invalid method %q", cfg.Method)
	}

	base := cfg.BaseURL
	if base == "" {
		base = d.BaseURL
	}
	u, err := BuildURL(cfg.URL, base, cfg.Params)
	if err != nil {
		return nil, err
	}

	h := make(http.Header, len(d.Header)+len(cfg.Header))
	for k, vs := range d.Header {
		ck := http.CanonicalHeaderKey(k)
		h[ck] = append(h[ck], vs...)
	}
	for k, vs := range cfg.Header {
		ck := http.CanonicalHeaderKey(k)
		h[ck] = append([]string(nil), vs...)
	}
	if err = validHeader(h); err != nil {
		return nil, err
	}

	rt := cfg.ResponseType
	if rt == "" {
		rt = codec.ResponseJSON
	}
	if !rt.Valid() {
		return nil, badOption("Invalid response type %q", string(rt))
	}

	enc, err := codec.Encode(cfg.Body, h)
	if err != nil {
		return nil, &Error{
			Message: err.Error(),
			Code:    CodeBodyStringify,
			Err:     err,
		}
	}
	enc.Apply(h)

	return &Finalized{
		Method:        method,
		URL:           u,
		Header:        h,
		Body:          enc,
		ContentLength: enc.ContentLength,
		Timeout:       effectiveTimeout(cfg.Timeout, d.Timeout),
		ResponseType:  rt,
	}, nil
}

func effectiveTimeout(own, def time.Duration) time.Duration {
	switch {
	case own > 0:
		return own
	case own < 0 || def < 0:
		return 0
	default:
		return def
	}
}

// Open returns a fresh reader over the request body, or nil if there
// is none.
func (f *Finalized) Open() io.ReadCloser {
	if f.Body == nil {
		return nil
	}
	return f.Body.Open()
}

// ToRequest creates an http.Request for the attempt. The body, if any,
// is opened afresh and may be wrapped by wrap before it is attached;
// wrap may be nil.
func (f *Finalized) ToRequest(ctx context.Context, wrap func(io.ReadCloser) io.ReadCloser) (*http.Request, error) {
	var body io.ReadCloser
	if rc := f.Open(); rc != nil {
		if f.ContentLength == 0 {
			_ = rc.Close()
		} else {
			body = rc
			if wrap != nil {
				body = wrap(rc)
			}
		}
	}
	r, err := http.NewRequestWithContext(ctx, f.Method, f.URL, body)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, err
	}
	r.Header = f.Header.Clone()
	r.Header.Del("Content-Length")
	if body != nil {
		r.ContentLength = f.ContentLength
		if f.ContentLength >= 0 {
			r.GetBody = func() (io.ReadCloser, error) {
				return f.Open(), nil
			}
		}
	}
	return r, nil
}

func validMethod(method string) bool {
	return httpguts.ValidHeaderFieldName(method)
}

func validHeader(h http.Header) error {
	for k, vs := range h {
		if !httpguts.ValidHeaderFieldName(k) {
			return badOption("Invalid header name %q", k)
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return badOption("Invalid value for header %q", k)
			}
		}
	}
	return nil
}
