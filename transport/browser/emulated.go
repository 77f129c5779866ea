// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package browser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/net/http/httpguts"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/progress"
	"github.com/gogama/fetchx/transport"
)

const (
	stateUnsent = iota
	stateOpened
	stateSent
	stateDone
)

var (
	errNotOpened   = errors.New("fetchx/browser: XHR not opened")
	errAlreadySent = errors.New("fetchx/browser: XHR already sent")
	errBadMethod   = errors.New("fetchx/browser: invalid method")
)

const chunkSize = 16 * 1024

// An Emulated is an XHR implemented over net/http. Listeners run on
// the Loop passed to NewEmulated.
//
// Like a browser it ignores forbidden request headers, drops the body
// of GET and HEAD requests, and undoes the response content encoding
// before exposing the response.
type Emulated struct {
	loop  *Loop
	doer  transport.HTTPDoer
	clock clock.Clock

	method  string
	url     string
	header  http.Header
	timeout time.Duration

	listeners       map[string][]func(ProgressEvent)
	uploadListeners map[string][]func(ProgressEvent)

	mu         sync.Mutex
	state      int
	status     int
	statusText string
	respHeader http.Header
	response   []byte
	cancel     context.CancelFunc
	timer      *clock.Timer
}

// NewEmulated returns an unopened XHR which posts its events to loop
// and sends requests with doer. A nil doer means http.DefaultClient
// and a nil clk means the wall clock.
func NewEmulated(loop *Loop, doer transport.HTTPDoer, clk clock.Clock) *Emulated {
	if doer == nil {
		doer = http.DefaultClient
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Emulated{
		loop:            loop,
		doer:            doer,
		clock:           clk,
		header:          make(http.Header),
		listeners:       make(map[string][]func(ProgressEvent)),
		uploadListeners: make(map[string][]func(ProgressEvent)),
	}
}

func (x *Emulated) Open(method, url string) error {
	if !httpguts.ValidHeaderFieldName(method) {
		return errBadMethod
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.state >= stateSent {
		return errAlreadySent
	}
	x.method, x.url = method, url
	x.state = stateOpened
	return nil
}

func (x *Emulated) SetRequestHeader(name, value string) {
	if Forbidden(name) {
		return
	}
	x.header.Add(name, value)
}

// SetResponseType is a no-op: the emulation always exposes the
// response as bytes.
func (x *Emulated) SetResponseType(string) {}

func (x *Emulated) SetTimeout(d time.Duration) {
	x.timeout = d
}

func (x *Emulated) On(eventType string, fn func(ProgressEvent)) {
	x.listeners[eventType] = append(x.listeners[eventType], fn)
}

func (x *Emulated) UploadOn(eventType string, fn func(ProgressEvent)) {
	x.uploadListeners[eventType] = append(x.uploadListeners[eventType], fn)
}

func (x *Emulated) Send(body *codec.Encoded) error {
	x.mu.Lock()
	switch x.state {
	case stateUnsent:
		x.mu.Unlock()
		return errNotOpened
	case stateSent, stateDone:
		x.mu.Unlock()
		return errAlreadySent
	}
	ctx, cancel := context.WithCancel(context.Background())
	x.state = stateSent
	x.cancel = cancel
	if x.timeout > 0 {
		x.timer = x.clock.AfterFunc(x.timeout, func() {
			x.finish(EventTimeout, nil, nil)
		})
	}
	x.emitLocked(x.listeners, ProgressEvent{Type: EventLoadStart})
	x.mu.Unlock()
	if x.method == http.MethodGet || x.method == http.MethodHead {
		body = nil
	}
	go x.run(ctx, body)
	return nil
}

func (x *Emulated) Abort() {
	x.finish(EventAbort, nil, nil)
}

func (x *Emulated) Status() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.status
}

func (x *Emulated) StatusText() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.statusText
}

func (x *Emulated) ResponseHeaders() http.Header {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.respHeader.Clone()
}

func (x *Emulated) Response() []byte {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.response
}

func (x *Emulated) run(ctx context.Context, body *codec.Encoded) {
	var up uploadRecorder
	var rc io.ReadCloser
	var length int64
	if body != nil {
		rc = body.Open()
		length = body.ContentLength
	}
	if rc != nil {
		up.r = progress.NewReader(rc, length, progress.Upload, func(evt progress.Event) {
			x.emit(x.uploadListeners, ProgressEvent{
				Type:             EventProgress,
				Loaded:           evt.Loaded,
				Total:            max(evt.Total, 0),
				LengthComputable: evt.LengthComputable(),
			})
		})
		rc = &up
	}
	req, err := http.NewRequestWithContext(ctx, x.method, x.url, rc)
	if err != nil {
		x.finish(EventError, err, nil)
		return
	}
	req.Header = x.header.Clone()
	if rc != nil {
		req.ContentLength = length
		if body.Kind == codec.KindForm {
			req.Header.Set("Content-Type", body.ContentType)
		}
	}
	resp, err := x.doer.Do(req)
	if err == nil {
		err = up.Err()
		if err != nil {
			_ = resp.Body.Close()
		}
	} else if uerr := up.Err(); uerr != nil {
		err = uerr
	}
	if err != nil {
		x.finish(EventError, err, nil)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	x.mu.Lock()
	x.status = resp.StatusCode
	x.statusText = transport.StatusText(resp.StatusCode, resp.Status)
	x.respHeader = resp.Header
	x.mu.Unlock()

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			x.emit(x.listeners, ProgressEvent{
				Type:             EventProgress,
				Loaded:           int64(buf.Len()),
				Total:            max(resp.ContentLength, 0),
				LengthComputable: resp.ContentLength >= 0,
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			x.finish(EventError, err, nil)
			return
		}
	}
	data, err := inflate(buf.Bytes(), resp.Header.Get("Content-Encoding"))
	if err != nil {
		x.finish(EventError, err, nil)
		return
	}
	x.finish(EventLoad, nil, func() {
		x.response = data
	})
}

// finish moves a sent XHR to the done state and posts the terminal
// event followed by loadend. It does nothing unless the XHR is in
// flight, so only the first of load, error, timeout and abort is ever
// delivered.
func (x *Emulated) finish(eventType string, err error, apply func()) {
	x.mu.Lock()
	if x.state != stateSent {
		x.mu.Unlock()
		return
	}
	if apply != nil {
		apply()
	}
	x.emitLocked(x.listeners, ProgressEvent{Type: eventType, Err: err})
	x.state = stateDone
	x.emitLocked(x.listeners, ProgressEvent{Type: EventLoadEnd})
	timer, cancel := x.timer, x.cancel
	x.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	cancel()
}

func (x *Emulated) emit(target map[string][]func(ProgressEvent), evt ProgressEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.state != stateSent {
		return
	}
	x.emitLocked(target, evt)
}

func (x *Emulated) emitLocked(target map[string][]func(ProgressEvent), evt ProgressEvent) {
	fns := target[evt.Type]
	if len(fns) == 0 {
		return
	}
	x.loop.Post(func() {
		for _, fn := range fns {
			fn(evt)
		}
	})
}

func inflate(raw []byte, contentEncoding string) ([]byte, error) {
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

// uploadRecorder remembers the first failure to produce the request
// body.
type uploadRecorder struct {
	r   *progress.Reader
	mu  sync.Mutex
	err error
}

func (u *uploadRecorder) Read(p []byte) (int, error) {
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

func (u *uploadRecorder) Close() error {
	return u.r.Close()
}

func (u *uploadRecorder) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}
