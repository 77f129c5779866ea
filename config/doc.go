// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads client settings from layered sources.
//
// Sources are applied in increasing priority: built-in defaults, an
// optional YAML document, and finally environment variables prefixed
// with FETCHX_. An environment variable maps to a key by dropping the
// prefix, lower-casing, and turning underscores into dots, so
// FETCHX_CLIENT_TIMEOUT sets client.timeout. Headers are the exception:
// FETCHX_CLIENT_HEADERS_X_API_KEY sets the header x-api-key.
package config
