// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/progress"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transport"
)

// Name is the name reported by the server backend.
const Name = "server"

const defaultChunkSize = 32 * 1024

// A Backend executes attempts with an HTTPDoer. Its zero value uses
// http.DefaultClient and the wall clock.
//
// Redirects, cookies, proxies and connection reuse are the business of
// the HTTPDoer.
type Backend struct {
	// HTTPDoer sends the HTTP requests. If nil, http.DefaultClient is
	// used.
	HTTPDoer transport.HTTPDoer
	// Clock measures attempt timeouts. If nil, the wall clock is used.
	Clock clock.Clock
	// ChunkSize is the read size used for the response body. If zero
	// or negative, 32 KiB is used.
	ChunkSize int
}

// New returns a Backend sending requests with doer.
func New(doer transport.HTTPDoer) *Backend {
	return &Backend{HTTPDoer: doer}
}

// Name returns "server".
func (b *Backend) Name() string {
	return Name
}

// Execute performs one attempt. See transport.Backend.
//
// The HTTP request runs on a context which keeps the values of ctx but
// is only cancelled when the attempt settles as a failure, so that a
// cancelled ctx is always reported as an abort rather than as a network
// error.
func (b *Backend) Execute(ctx context.Context, fin *request.Finalized, cfg *request.Config) (*request.Response, error) {
	actx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a := transport.NewAttempt(fin, b.Clock, cancel)
	a.WatchContext(ctx)
	a.WatchTimeout(fin.Timeout)
	if a.Settled() {
		cancel()
		return a.Wait()
	}
	go b.run(actx, cancel, a, fin, cfg)
	return a.Wait()
}

// CloseIdleConnections forwards to the HTTPDoer if it supports it.
func (b *Backend) CloseIdleConnections() {
	if ic, ok := b.doer().(transport.IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (b *Backend) doer() transport.HTTPDoer {
	if b.HTTPDoer == nil {
		return http.DefaultClient
	}
	return b.HTTPDoer
}

func (b *Backend) chunkSize() int {
	if b.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return b.ChunkSize
}

func (b *Backend) run(ctx context.Context, cancel context.CancelFunc, a *transport.Attempt, fin *request.Finalized, cfg *request.Config) {
	var up uploadBody
	req, err := fin.ToRequest(ctx, func(rc io.ReadCloser) io.ReadCloser {
		up.r = progress.NewReader(rc, fin.ContentLength, progress.Upload, cfg.OnUploadProgress)
		return &up
	})
	if err != nil {
		cancel()
		a.Reject(request.NewNetworkError(fin, err))
		return
	}
	resp, err := b.doer().Do(req)
	if err != nil {
		cancel()
		a.Reject(transport.Classify(fin, err, up.Err()))
		return
	}
	if uerr := up.Err(); uerr != nil {
		_ = resp.Body.Close()
		cancel()
		a.Reject(transport.Classify(fin, uerr, uerr))
		return
	}
	if fin.ResponseType == codec.ResponseStream {
		b.stream(cancel, a, fin, cfg, resp)
		return
	}
	defer cancel()
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := b.readBody(resp, cfg.OnDownloadProgress)
	if err != nil {
		a.Reject(request.NewResponseError(fin, partial(fin, resp, raw), err))
		return
	}
	body, err := decode(raw, resp.Header.Get("Content-Encoding"))
	if err != nil {
		a.Reject(request.NewResponseError(fin, partial(fin, resp, raw), err))
		return
	}
	r, rerr := transport.BuildResponse(fin, cfg, resp.StatusCode, resp.Status, resp.Header, body)
	if rerr != nil {
		a.Reject(rerr)
		return
	}
	a.Resolve(r)
}

func (b *Backend) readBody(resp *http.Response, fn progress.Func) ([]byte, error) {
	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(min(resp.ContentLength, 64*1024*1024)))
	}
	r := progress.NewReader(resp.Body, resp.ContentLength, progress.Download, fn)
	chunk := make([]byte, b.chunkSize())
	for {
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return buf.Bytes(), err
		}
	}
}

func (b *Backend) stream(cancel context.CancelFunc, a *transport.Attempt, fin *request.Finalized, cfg *request.Config, resp *http.Response) {
	body, err := codec.Decompress(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		_ = resp.Body.Close()
		cancel()
		a.Reject(request.NewResponseError(fin, partial(fin, resp, nil), err))
		return
	}
	sb := &streamBody{
		r:      progress.NewReader(body, resp.ContentLength, progress.Download, cfg.OnDownloadProgress),
		cancel: cancel,
	}
	r := &request.Response{
		Status:     resp.StatusCode,
		StatusText: transport.StatusText(resp.StatusCode, resp.Status),
		Header:     resp.Header,
		Data:       sb,
		Filename:   codec.Filename(resp.Header.Get("Content-Disposition")),
		Request:    fin,
	}
	if !cfg.StatusOK(resp.StatusCode) {
		_ = sb.Close()
		a.Reject(request.NewStatusError(fin, r))
		return
	}
	if !a.Resolve(r) {
		_ = sb.Close()
	}
}

func partial(fin *request.Finalized, resp *http.Response, raw []byte) *request.Response {
	return &request.Response{
		Status:     resp.StatusCode,
		StatusText: transport.StatusText(resp.StatusCode, resp.Status),
		Header:     resp.Header,
		Body:       raw,
		Filename:   codec.Filename(resp.Header.Get("Content-Disposition")),
		Request:    fin,
	}
}

func decode(raw []byte, contentEncoding string) ([]byte, error) {
	if contentEncoding == "" || len(raw) == 0 {
		return raw, nil
	}
	rc, err := codec.Decompress(io.NopCloser(bytes.NewReader(raw)), contentEncoding)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}

// uploadBody remembers the first failure to produce the request body,
// since the HTTPDoer may report it as a generic write error.
type uploadBody struct {
	r   *progress.Reader
	mu  sync.Mutex
	err error
}

func (u *uploadBody) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)
	if err != nil && err != io.EOF {
		u.mu.Lock()
		if u.err == nil {
			u.err = err
		}
		u.mu.Unlock()
	}
	return n, err
}

func (u *uploadBody) Close() error {
	return u.r.Close()
}

// Err returns the recorded body failure, if any. It is safe to call on
// a nil receiver.
func (u *uploadBody) Err() error {
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// streamBody is the Data of a stream response. Closing it releases the
// connection.
type streamBody struct {
	r      *progress.Reader
	cancel context.CancelFunc
	once   sync.Once
}

func (s *streamBody) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *streamBody) Close() error {
	err := s.r.Close()
	s.once.Do(s.cancel)
	return err
}
