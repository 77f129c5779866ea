// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package codec converts request payloads to wire bodies and response
// bodies back into Go values.
//
// Request payloads are expressed as a Body, a closed tagged union with
// one variant per supported payload kind. Build one with the Bytes,
// Text, JSON, Multipart, or Value constructors, or classify an arbitrary
// Go value with From:
//
//	body := codec.JSON(map[string]any{"name": "gopher"})
//	enc, err := codec.Encode(body, header)
//
// Response bodies are decoded according to a ResponseType hint and the
// response Content-Type with Decode:
//
//	data, err := codec.Decode(codec.ResponseJSON, resp.Header.Get("Content-Type"), raw)
package codec
