// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package browser

import (
	"net/http"
	"strings"
	"time"

	"github.com/gogama/fetchx/codec"
)

// XHR event types.
const (
	EventLoadStart = "loadstart"
	EventProgress  = "progress"
	EventLoad      = "load"
	EventError     = "error"
	EventTimeout   = "timeout"
	EventAbort     = "abort"
	EventLoadEnd   = "loadend"
)

// A ProgressEvent is the payload of an XHR event.
type ProgressEvent struct {
	Type             string
	Loaded           int64
	Total            int64
	LengthComputable bool
	// Err is the failure behind an error event, when known. Native
	// XHRs never set it.
	Err error
}

// An XHR is the subset of the XMLHttpRequest API used by the backend.
// Listeners are called one at a time, in order, and never concurrently
// with each other.
type XHR interface {
	Open(method, url string) error
	SetRequestHeader(name, value string)
	SetResponseType(responseType string)
	SetTimeout(d time.Duration)
	On(eventType string, fn func(ProgressEvent))
	// UploadOn adds a listener to the upload target.
	UploadOn(eventType string, fn func(ProgressEvent))
	// Send starts the request. The body is nil for no body. A
	// multipart body is sent as form data, with the content type and
	// boundary chosen by the XHR.
	Send(body *codec.Encoded) error
	Abort()
	Status() int
	StatusText() string
	ResponseHeaders() http.Header
	Response() []byte
}

// forbidden lists the request headers a browser refuses to let scripts
// set.
var forbidden = map[string]bool{
	"Accept-Charset":                 true,
	"Accept-Encoding":                true,
	"Access-Control-Request-Headers": true,
	"Access-Control-Request-Method":  true,
	"Connection":                     true,
	"Content-Length":                 true,
	"Cookie":                         true,
	"Cookie2":                        true,
	"Date":                           true,
	"Dnt":                            true,
	"Expect":                         true,
	"Host":                           true,
	"Keep-Alive":                     true,
	"Origin":                         true,
	"Referer":                        true,
	"Te":                             true,
	"Trailer":                        true,
	"Transfer-Encoding":              true,
	"Upgrade":                        true,
	"Via":                            true,
}

// Forbidden reports whether a browser would refuse to let a script set
// the named request header.
func Forbidden(name string) bool {
	name = http.CanonicalHeaderKey(name)
	if forbidden[name] {
		return true
	}
	return strings.HasPrefix(name, "Proxy-") || strings.HasPrefix(name, "Sec-")
}

// ParseHeaders parses the string returned by getAllResponseHeaders.
func ParseHeaders(raw string) http.Header {
	h := make(http.Header)
	for _, line := range strings.Split(raw, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h
}
