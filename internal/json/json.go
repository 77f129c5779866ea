// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package json wraps bytedance/sonic behind the subset of the
// encoding/json API used by fetchx.
//
// The standard-compatible sonic configuration is used so that map keys
// are sorted and output is byte-for-byte identical to encoding/json.
package json

import (
	stdjson "encoding/json"
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// NewDecoder returns a decoder that reads JSON values from r.
func NewDecoder(r io.Reader) Decoder {
	return api.NewDecoder(r)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return sonic.Valid(data)
}

type (
	// Decoder reads and decodes JSON values from an input stream.
	Decoder = sonic.Decoder

	// Marshaler is the interface for types that can marshal themselves
	// into valid JSON.
	Marshaler = stdjson.Marshaler

	// RawMessage is a raw encoded JSON value.
	RawMessage = stdjson.RawMessage
)
