// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// A Code classifies an Error. Callers branch on the Code, not the
// message.
type Code string

const (
	// CodeNetwork is a transport failure before any response arrived.
	CodeNetwork Code = "ERR_NETWORK"
	// CodeAborted is an attempt ended by its timeout or by
	// cancellation.
	CodeAborted Code = "ECONNABORTED"
	// CodeInvalidURL is a URL that could not be resolved to an absolute
	// http or https URL.
	CodeInvalidURL Code = "ERR_INVALID_URL"
	// CodeBodyStringify is a JSON body that could not be serialized.
	CodeBodyStringify Code = "ERR_BODY_STRINGIFY"
	// CodeParse is a JSON response body that could not be parsed.
	CodeParse Code = "ERR_PARSE"
	// CodeUploadStream is a failure while streaming a multipart body.
	CodeUploadStream Code = "ERR_UPLOAD_STREAM"
	// CodeResponse is a failure while reading the response body.
	CodeResponse Code = "ERR_RESPONSE"
	// CodeBadOption is an invalid method, header, or response type.
	CodeBadOption Code = "ERR_BAD_OPTION"
	// CodeStatus is the empty code of a response whose status failed
	// validation.
	CodeStatus Code = ""
)

// An Error is the single failure type of fetchx.
type Error struct {
	// Message is human readable.
	Message string
	// Code classifies the failure.
	Code Code
	// Request is the attempt's finalized request. It is nil when the
	// request could not be finalized.
	Request *Finalized
	// Response is set if a response was received, even partially.
	Response *Response
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the response status code, or zero if there is no
// response.
func (e *Error) Status() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// Timeout reports whether the attempt was ended by its timeout.
func (e *Error) Timeout() bool {
	var te timeoutError
	return e.Code == CodeAborted && errors.As(e.Err, &te)
}

// Canceled reports whether the attempt was ended by cancellation.
func (e *Error) Canceled() bool {
	return e.Code == CodeAborted && !e.Timeout()
}

// Retryable reports whether the failure is one the built-in retry rule
// retries: a network failure or an attempt timeout.
func (e *Error) Retryable() bool {
	return e.Code == CodeNetwork || e.Timeout()
}

// Preflight reports whether the request failed before any I/O.
func (e *Error) Preflight() bool {
	switch e.Code {
	case CodeInvalidURL, CodeBodyStringify, CodeBadOption:
		return true
	default:
		return false
	}
}

type timeoutError struct {
	d time.Duration
}

func (e timeoutError) Error() string {
	return "fetchx: attempt timeout " + e.d.String() + " exceeded"
}

func (e timeoutError) Timeout() bool {
	return true
}

// NewTimeoutError returns the CodeAborted error of an attempt which
// exceeded timeout d.
func NewTimeoutError(fin *Finalized, d time.Duration) *Error {
	return &Error{
		Message: "timeout of " + strconv.FormatInt(d.Milliseconds(), 10) + "ms exceeded",
		Code:    CodeAborted,
		Request: fin,
		Err:     timeoutError{d},
	}
}

// NewAbortError returns the CodeAborted error of an attempt cancelled
// by its caller. A nil cause is reported as context.Canceled.
func NewAbortError(fin *Finalized, cause error) *Error {
	if cause == nil {
		cause = context.Canceled
	}
	return &Error{
		Message: "Request aborted",
		Code:    CodeAborted,
		Request: fin,
		Err:     cause,
	}
}

// NewNetworkError returns the CodeNetwork error of an attempt that
// failed before any response arrived.
func NewNetworkError(fin *Finalized, cause error) *Error {
	return &Error{
		Message: "Network Error",
		Code:    CodeNetwork,
		Request: fin,
		Err:     cause,
	}
}

// NewStatusError returns the error of a response whose status failed
// validation.
func NewStatusError(fin *Finalized, resp *Response) *Error {
	return &Error{
		Message:  "Request failed with status code " + strconv.Itoa(resp.Status),
		Code:     CodeStatus,
		Request:  fin,
		Response: resp,
	}
}

// NewResponseError returns the CodeResponse error of a response whose
// body could not be read. resp holds whatever was received.
func NewResponseError(fin *Finalized, resp *Response, cause error) *Error {
	return &Error{
		Message:  fmt.Sprintf("Error reading response body: %v", cause),
		Code:     CodeResponse,
		Request:  fin,
		Response: resp,
		Err:      cause,
	}
}

// NewParseError returns the CodeParse error of a response whose JSON
// body could not be parsed.
func NewParseError(fin *Finalized, resp *Response, cause error) *Error {
	return &Error{
		Message:  "Failed to parse response body as JSON",
		Code:     CodeParse,
		Request:  fin,
		Response: resp,
		Err:      cause,
	}
}

// NewUploadError returns the CodeUploadStream error of a request body
// which could not be streamed.
func NewUploadError(fin *Finalized, cause error) *Error {
	return &Error{
		Message: fmt.Sprintf("Upload stream failed: %v", cause),
		Code:    CodeUploadStream,
		Request: fin,
		Err:     cause,
	}
}

func badOption(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Message: msg,
		Code:    CodeBadOption,
		Err:     errors.New(msg),
	}
}
