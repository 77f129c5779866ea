// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"sync"
	"time"
)

// DefaultValues are the settings every request inherits unless it
// overrides them.
type DefaultValues struct {
	// BaseURL is joined to relative request URLs.
	BaseURL string
	// Header is merged under the per-request headers.
	Header http.Header
	// Timeout bounds each attempt. Zero means no timeout.
	Timeout time.Duration
}

// Clone returns a deep copy of v.
func (v DefaultValues) Clone() DefaultValues {
	v.Header = v.Header.Clone()
	if v.Header == nil {
		v.Header = make(http.Header)
	}
	return v
}

// Defaults holds DefaultValues shared by many requests. The zero value
// is ready to use and has no base URL, no headers, and no timeout.
//
// Defaults is safe for concurrent use. Attempts take a fresh Snapshot,
// so an Update is visible to the next attempt of an in-flight request
// but never to an attempt already running.
type Defaults struct {
	mu sync.RWMutex
	v  DefaultValues
}

// GlobalDefaults are the process-wide defaults used by clients which
// do not carry their own.
var GlobalDefaults = NewDefaults()

// NewDefaults returns empty defaults.
func NewDefaults() *Defaults {
	return &Defaults{v: DefaultValues{Header: make(http.Header)}}
}

// Update applies fn to the defaults under the write lock. It is the
// only way to change a Defaults.
func (d *Defaults) Update(fn func(v *DefaultValues)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.v.Header == nil {
		d.v.Header = make(http.Header)
	}
	fn(&d.v)
}

// Snapshot returns a deep copy of the current values.
func (d *Defaults) Snapshot() DefaultValues {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.v.Clone()
}
