// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package fetchx provides an HTTP request client with retry, timeout and
cancellation support which runs unchanged on servers and, compiled with
GOOS=js GOARCH=wasm, in browsers.

Create a Client to begin making requests.

	client := &fetchx.Client{}
	resp, err := client.Get("https://www.example.com/users")
	...
	resp, err := client.Post("https://www.example.com/users",
		map[string]any{"name": "test", "value": 123})
	...
	fmt.Println(resp.Get("id").String())

Bodies are classified by codec.From: a *codec.Form is streamed as
multipart/form-data, a []byte is sent as is, a string as text, maps and
structs as JSON. Responses are decoded according to the config's
ResponseType and available as Data, the raw Body, or a Stream.

For full control over a single logical request, build a request.Config
and execute it with Do:

	cfg := request.NewConfigWithContext(ctx, "PUT", "/widgets/1")
	cfg.Body = codec.JSON(widget)
	cfg.Timeout = 5 * time.Second
	cfg.Retry = 3
	cfg.OnUploadProgress = func(evt progress.Event) { ... }
	e, err := client.Do(cfg)

Every failure is an *Error whose Code classifies it. Status codes outside
the accepted range fail with an empty code and carry the response.

Default values, such as a base URL shared by many requests, live in a
request.Defaults. Every attempt takes a fresh snapshot of them:

	defaults := request.NewDefaults()
	defaults.Update(func(v *request.DefaultValues) {
		v.BaseURL = "https://api.example.com/v1"
		v.Header.Set("Authorization", "Bearer "+token)
	})
	client := &fetchx.Client{
		Defaults: defaults,
	}

The client performs attempts through a transport.Backend. The server
backend in package transport/server uses net/http; the browser backend
in package transport/browser drives an XMLHttpRequest. DefaultBackend
picks the one matching the platform.

For control over the client's retry decisions and timing, create a
custom retry policy using components from package retry:

	retryWaiter := retry.NewExpWaiter(250*time.Millisecond, 5*time.Second, time.Now().UnixNano())
	retryPolicy := retry.NewPolicy(retry.DefaultDecider, retryWaiter)
	client := &fetchx.Client{
		RetryPolicy: retryPolicy,
	}

For control over the client's individual attempt timeouts, set a custom
timeout policy using package timeout:

	client := &fetchx.Client{
		TimeoutPolicy: timeout.Fixed(10 * time.Second),
	}

To hook into the fine-grained details of the client's request execution
logic, install a handler into the appropriate handler chain:

	handlers := &fetchx.HandlerGroup{}
	handlers.PushBack(fetchx.BeforeAttempt, fetchx.HandlerFunc(
		func(_ fetchx.Event, e *request.Execution) {
			log.Printf("Attempt %d to %s", e.Attempt, e.Request.URL)
		}),
	)
	client := &fetchx.Client{
		Handlers: handlers,
	}

Package fetchx provides basic interfaces for each method of the client
(Doer, Requester, Getter, Poster, Putter, Patcher, Deleter, and
IdleCloser); a combined interface that composes all the basic methods
(Executor); and utility functions for working with a Doer (Inflate,
Request, Get, Post, Put, Patch, and Delete).
*/
package fetchx
