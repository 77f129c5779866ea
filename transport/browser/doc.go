// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package browser provides the transport.Backend which drives an
// XMLHttpRequest.
//
// Under GOOS=js GOARCH=wasm the backend uses the browser's native
// XMLHttpRequest. Elsewhere it uses an emulation over net/http which
// delivers the same event sequence (loadstart, progress, then exactly
// one of load, error, timeout or abort, then loadend) on a single
// event loop goroutine, so the backend can be exercised by ordinary Go
// tests.
//
// The backend always asks the XHR for an arraybuffer and decodes it
// with the same rules as the server backend. The XHR's own timeout is
// used for attempt timeouts, and forbidden request headers such as
// Content-Length are never set.
package browser
