// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package browser

import (
	"context"
	"errors"
	"net/http"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/progress"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transport"
)

// Name is the name reported by the browser backend.
const Name = "browser"

var errXHR = errors.New("fetchx/browser: XMLHttpRequest failed")

// A Backend executes attempts with an XHR. Its zero value uses the
// platform XHR: the native XMLHttpRequest under js/wasm, and otherwise
// an emulation over http.DefaultClient.
type Backend struct {
	// NewXHR creates the XHR for one attempt. If nil, the platform XHR
	// is used.
	NewXHR func() XHR
}

// New returns a Backend using xhr to create XHRs.
func New(xhr func() XHR) *Backend {
	return &Backend{NewXHR: xhr}
}

// Name returns "browser".
func (b *Backend) Name() string {
	return Name
}

// Execute performs one attempt. See transport.Backend.
func (b *Backend) Execute(ctx context.Context, fin *request.Finalized, cfg *request.Config) (*request.Response, error) {
	x := b.xhr()
	if err := x.Open(fin.Method, fin.URL); err != nil {
		return nil, request.NewNetworkError(fin, err)
	}
	a := transport.NewAttempt(fin, nil, x.Abort)
	x.SetResponseType(string(codec.ResponseArrayBuffer))
	x.SetTimeout(fin.Timeout)
	setHeaders(x, fin)

	x.On(EventLoad, func(ProgressEvent) {
		resp, err := transport.BuildResponse(fin, cfg, x.Status(), x.StatusText(), x.ResponseHeaders(), x.Response())
		if err != nil {
			a.Reject(err)
			return
		}
		a.Resolve(resp)
	})
	x.On(EventError, func(evt ProgressEvent) {
		err := evt.Err
		if err == nil {
			err = errXHR
		}
		a.Reject(transport.Classify(fin, err, err))
	})
	x.On(EventTimeout, func(ProgressEvent) {
		a.Reject(request.NewTimeoutError(fin, fin.Timeout))
	})
	x.On(EventAbort, func(ProgressEvent) {
		a.Reject(request.NewAbortError(fin, context.Cause(ctx)))
	})
	if fn := cfg.OnDownloadProgress; fn != nil {
		x.On(EventProgress, func(evt ProgressEvent) {
			if evt.LengthComputable {
				fn(progress.NewEvent(progress.Download, evt.Loaded, evt.Total))
			}
		})
	}
	body := requestBody(fin)
	if fn := cfg.OnUploadProgress; fn != nil && body != nil {
		x.UploadOn(EventProgress, func(evt ProgressEvent) {
			total := evt.Total
			if !evt.LengthComputable {
				total = progress.Unknown
			}
			fn(progress.NewEvent(progress.Upload, evt.Loaded, total))
		})
	}

	a.WatchContext(ctx)
	if a.Settled() {
		return a.Wait()
	}
	if err := x.Send(body); err != nil {
		a.Reject(transport.Classify(fin, err, err))
	}
	return a.Wait()
}

func (b *Backend) xhr() XHR {
	if b.NewXHR == nil {
		return newXHR()
	}
	return b.NewXHR()
}

// setHeaders copies the request headers a script may set. The content
// type of a multipart body is left to the XHR, which picks the
// boundary.
func setHeaders(x XHR, fin *request.Finalized) {
	form := fin.Body != nil && fin.Body.Kind == codec.KindForm
	for name, values := range fin.Header {
		if Forbidden(name) || (form && http.CanonicalHeaderKey(name) == "Content-Type") {
			continue
		}
		for _, v := range values {
			x.SetRequestHeader(name, v)
		}
	}
}

func requestBody(fin *request.Finalized) *codec.Encoded {
	if fin.Body == nil || fin.Body.Empty() || fin.ContentLength == 0 {
		return nil
	}
	return fin.Body
}
