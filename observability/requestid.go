// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observability

import (
	"github.com/google/uuid"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/request"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID tags every attempt of an execution with the same request
// ID. A header already present on the request is kept.
type RequestID struct {
	// Header overrides HeaderXRequestID.
	Header string
	// New generates IDs. If nil, random UUIDs are used.
	New func() string
}

// Install adds the request ID handler to g.
func (r RequestID) Install(g *fetchx.HandlerGroup) {
	g.PushBack(fetchx.BeforeAttempt, fetchx.HandlerFunc(r.handle))
}

func (r RequestID) handle(_ fetchx.Event, e *request.Execution) {
	name := r.Header
	if name == "" {
		name = HeaderXRequestID
	}
	if e.Request.Header.Get(name) != "" {
		return
	}
	id, ok := e.Value(requestIDKey{}).(string)
	if !ok {
		if r.New != nil {
			id = r.New()
		} else {
			id = uuid.NewString()
		}
		e.SetValue(requestIDKey{}, id)
	}
	e.Request.Header.Set(name, id)
}

// ID returns the request ID assigned to e, if any.
func ID(e *request.Execution) string {
	id, _ := e.Value(requestIDKey{}).(string)
	return id
}
