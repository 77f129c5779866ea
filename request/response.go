// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// A Response is the outcome of a successful attempt, or the partial
// outcome carried by an Error. It is never modified after it is
// returned.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// StatusText is the reason phrase, for example "Not Found".
	StatusText string
	// Header holds the response headers.
	Header http.Header
	// Data is the decoded body: a string, a []byte, a JSON value, an
	// *html.Node, or for stream responses an io.ReadCloser.
	Data any
	// Body holds the raw bytes as received after content decoding. It
	// is nil for stream responses.
	Body []byte
	// Filename is taken from the Content-Disposition header, if any.
	Filename string
	// Request is the finalized request which produced the response.
	Request *Finalized
}

// Get queries the raw body as JSON using a gjson path.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Text returns Data if it is a string, and otherwise the raw body as a
// string.
func (r *Response) Text() string {
	if s, ok := r.Data.(string); ok {
		return s
	}
	return string(r.Body)
}

// Stream returns the live body of a stream response, or nil. The
// caller must close it.
func (r *Response) Stream() io.ReadCloser {
	rc, _ := r.Data.(io.ReadCloser)
	return rc
}
