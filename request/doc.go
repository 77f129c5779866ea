// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types of a fetchx request: Config
(what the caller asked for), Finalized (one attempt's fully resolved
request), Response, Error, and Execution (the state of a logical
request across all of its attempts).

A Config describes a logical request which may result in several
attempts if retries are needed:

	cfg := request.NewConfig("POST", "/users")
	cfg.Body = codec.JSON(user)
	cfg.Retry = 2
	...
	e, err := client.Do(cfg)

Every attempt turns the Config into a Finalized request by merging a
fresh snapshot of the process-wide Defaults with the per-request
values, building the absolute URL, and encoding the body:

	fin, err := request.Finalize(cfg, request.GlobalDefaults.Snapshot())

Every failure surfaced by fetchx is a single *Error whose Code tells the
caller what went wrong, and whose Response, if non-nil, holds the
response that was received.

A Config may carry a context which cancels the whole logical request,
including any attempt in flight and any wait between attempts:

	cfg := request.NewConfigWithContext(ctx, "GET", "https://example.com")
*/
package request
