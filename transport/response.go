// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/request"
)

// BuildResponse assembles the response of a completed attempt from the
// status line, headers and fully read body, then decodes and validates
// it.
//
// Status validation wins over decoding: a response whose status fails
// cfg.StatusOK is rejected with a status error even if its body is not
// valid JSON, and its Data then holds the body as text. A JSON parse
// failure on an accepted status is rejected with a parse error.
//
// The returned response is never nil, and is attached to the error on
// rejection.
func BuildResponse(fin *request.Finalized, cfg *request.Config, status int, statusText string, header http.Header, body []byte) (*request.Response, *request.Error) {
	if header == nil {
		header = http.Header{}
	}
	resp := &request.Response{
		Status:     status,
		StatusText: StatusText(status, statusText),
		Header:     header,
		Body:       body,
		Filename:   codec.Filename(header.Get("Content-Disposition")),
		Request:    fin,
	}
	data, err := codec.Decode(fin.ResponseType, header.Get("Content-Type"), body)
	if err != nil {
		var pe *codec.ParseError
		isParse := errors.As(err, &pe)
		if isParse {
			resp.Data = pe.Raw
		} else {
			resp.Data = codec.Text(header.Get("Content-Type"), body)
		}
		if !cfg.StatusOK(status) {
			return resp, request.NewStatusError(fin, resp)
		}
		if isParse {
			return resp, request.NewParseError(fin, resp, err)
		}
		return resp, request.NewResponseError(fin, resp, err)
	}
	resp.Data = data
	if !cfg.StatusOK(status) {
		return resp, request.NewStatusError(fin, resp)
	}
	return resp, nil
}

// StatusText returns the reason phrase of a status line. A status line
// such as "404 Not Found" is trimmed to "Not Found", and an empty
// phrase falls back to the standard text for the code.
func StatusText(code int, line string) string {
	line = strings.TrimSpace(line)
	if prefix := strconv.Itoa(code); strings.HasPrefix(line, prefix) {
		line = strings.TrimSpace(line[len(prefix):])
	}
	if line == "" {
		return http.StatusText(code)
	}
	return line
}

// Classify converts a transport failure which produced no response
// into the attempt error. Failures to produce the request body are
// upload errors; everything else is a network error. The upload
// argument, which may be nil, is a body read failure recorded while
// the transport was consuming the body.
func Classify(fin *request.Finalized, err, upload error) *request.Error {
	var re *request.Error
	if errors.As(err, &re) {
		return re
	}
	var ue *codec.UploadError
	switch {
	case errors.As(upload, &ue):
		return request.NewUploadError(fin, upload)
	case errors.As(err, &ue):
		return request.NewUploadError(fin, err)
	default:
		return request.NewNetworkError(fin, err)
	}
}
