// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"github.com/gogama/fetchx/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a request config and returns the final execution state
// (and error, if any). Client implements the Doer interface, and any
// other Doer implementation must behave substantially the same as
// Client.Do.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(cfg *request.Config) (*request.Execution, error)
}

// Requester is the interface that wraps the basic Request method.
//
// Any Doer can be used to emulate a Requester via the Request function.
type Requester interface {
	Request(url string, cfg *request.Config) (*Response, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string) (*Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// The body parameter may be any value accepted by codec.From.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url string, body any) (*Response, error)
}

// Putter is the interface that wraps the basic Put method.
//
// Any Doer can be used to emulate a Putter via the Put function.
type Putter interface {
	Put(url string, body any) (*Response, error)
}

// Patcher is the interface that wraps the basic Patch method.
//
// Any Doer can be used to emulate a Patcher via the Patch function.
type Patcher interface {
	Patch(url string, body any) (*Response, error)
}

// Deleter is the interface that wraps the basic Delete method.
//
// Any Doer can be used to emulate a Deleter via the Delete function.
type Deleter interface {
	Delete(url string) (*Response, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying backend supports it, CloseIdleConnections closes
// any connections sitting idle in a "keep-alive" state. Otherwise it
// does nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Do, Request, Get,
// Post, Put, Patch, Delete, and CloseIdleConnections methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Requester
	Getter
	Poster
	Putter
	Patcher
	Deleter
	IdleCloser
}

// Request uses the specified Doer to execute cfg against url. A nil cfg
// means a GET; a nil d means DefaultClient. The cfg is not modified.
func Request(d Doer, url string, cfg *request.Config) (*Response, error) {
	if cfg == nil {
		cfg = request.NewConfig("GET", url)
	} else {
		cfg = cfg.Clone()
		cfg.URL = url
	}
	return respond(d, cfg)
}

// Get uses the specified Doer to issue a GET to url. A nil d means
// DefaultClient.
func Get(d Doer, url string) (*Response, error) {
	return respond(d, newConfig("GET", url, nil))
}

// Post uses the specified Doer to issue a POST to url with body. A nil
// d means DefaultClient.
func Post(d Doer, url string, body any) (*Response, error) {
	return respond(d, newConfig("POST", url, body))
}

// Put uses the specified Doer to issue a PUT to url with body. A nil d
// means DefaultClient.
func Put(d Doer, url string, body any) (*Response, error) {
	return respond(d, newConfig("PUT", url, body))
}

// Patch uses the specified Doer to issue a PATCH to url with body. A
// nil d means DefaultClient.
func Patch(d Doer, url string, body any) (*Response, error) {
	return respond(d, newConfig("PATCH", url, body))
}

// Delete uses the specified Doer to issue a DELETE to url. A nil d
// means DefaultClient.
func Delete(d Doer, url string) (*Response, error) {
	return respond(d, newConfig("DELETE", url, nil))
}

func respond(d Doer, cfg *request.Config) (*Response, error) {
	if d == nil {
		d = DefaultClient
	}
	e, err := d.Do(cfg)
	if err != nil {
		return nil, err
	}
	return e.Response, nil
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("fetchx: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(cfg *request.Config) (*request.Execution, error) {
	return i.doer.Do(cfg)
}

func (i inflated) Request(url string, cfg *request.Config) (*Response, error) {
	return Request(i.doer, url, cfg)
}

func (i inflated) Get(url string) (*Response, error) {
	return Get(i.doer, url)
}

func (i inflated) Post(url string, body any) (*Response, error) {
	return Post(i.doer, url, body)
}

func (i inflated) Put(url string, body any) (*Response, error) {
	return Put(i.doer, url, body)
}

func (i inflated) Patch(url string, body any) (*Response, error) {
	return Patch(i.doer, url, body)
}

func (i inflated) Delete(url string) (*Response, error) {
	return Delete(i.doer, url)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
