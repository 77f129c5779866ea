// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport defines the single-attempt Backend contract shared
// by the server (net/http) and browser (XMLHttpRequest) backends, and
// the machinery both use to honour it.
//
// An Attempt is the settlement coordinator of one attempt. It resolves
// or rejects at most once, whichever of completion, timeout, or
// cancellation happens first, and tears down the transport and every
// watcher when it does. Every later signal is ignored.
//
// BuildResponse turns a received status, header set, and body into a
// request.Response, applying the shared decoding and status validation
// rules so both backends produce identical results for the same bytes.
package transport
