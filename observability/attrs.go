// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observability

import (
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gogama/fetchx/request"
)

// Attribute keys per OTel semantic conventions.
const (
	attrHTTPRequestMethod  = "http.request.method"
	attrHTTPResponseStatus = "http.response.status_code"
	attrHTTPResendCount    = "http.request.resend_count"
	attrURLFull            = "url.full"
	attrErrorType          = "error.type"
	attrBackend            = "fetchx.backend"
)

func method(e *request.Execution) string {
	if e.Request != nil {
		return e.Request.Method
	}
	if m := strings.ToUpper(e.Config.Method); m != "" {
		return m
	}
	return http.MethodGet
}

// errorType is the error code, or the status code of a response which
// failed validation.
func errorType(e *request.Execution) string {
	f := e.Failure()
	switch {
	case f == nil:
		return ""
	case f.Code == request.CodeStatus && f.Response != nil:
		return strconv.Itoa(f.Response.Status)
	case f.Code == request.CodeStatus:
		return "_OTHER"
	default:
		return string(f.Code)
	}
}

func outcomeAttributes(e *request.Execution) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(attrHTTPRequestMethod, method(e)),
	}
	if status := e.StatusCode(); status != 0 {
		attrs = append(attrs, attribute.Int(attrHTTPResponseStatus, status))
	}
	if et := errorType(e); et != "" {
		attrs = append(attrs, attribute.String(attrErrorType, et))
	}
	return attrs
}
