// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package server provides the transport.Backend which sends requests
// with a Go HTTPDoer, normally an *http.Client.
//
// The backend streams the request body through an upload progress
// reader, reads the response body chunk by chunk while reporting
// download progress, undoes any content encoding the HTTPDoer left in
// place, and settles through a transport.Attempt so that a timeout or
// cancellation racing completion is reported exactly once.
package server
