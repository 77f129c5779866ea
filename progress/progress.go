// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package progress reports byte-level transfer progress for request
// uploads and response downloads.
//
// A progress Func receives an Event every time the transport moves a
// chunk of bytes. Loaded never decreases within one transfer. When the
// size of the transfer is not known in advance, Total is Unknown and
// Percent is zero.
package progress

import (
	"io"
	"strconv"
)

// Unknown is the Total of an Event whose transfer size is not known.
const Unknown int64 = -1

// A Direction tells whether an Event describes the request body going
// up or the response body coming down.
type Direction int

const (
	// Upload identifies request body progress.
	Upload Direction = iota
	// Download identifies response body progress.
	Download
)

// String returns "upload" or "download".
func (d Direction) String() string {
	switch d {
	case Upload:
		return "upload"
	case Download:
		return "download"
	default:
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
}

// An Event is a single progress notification.
type Event struct {
	Direction Direction
	// Loaded is the number of bytes transferred so far.
	Loaded int64
	// Total is the expected number of bytes, or Unknown.
	Total int64
	// Percent is Loaded/Total*100, or zero when Total is Unknown.
	Percent float64
}

// LengthComputable reports whether the total size is known.
func (e Event) LengthComputable() bool {
	return e.Total >= 0
}

// A Func consumes progress events. It is called synchronously from the
// goroutine moving the bytes, so it should return quickly.
type Func func(Event)

// NewEvent builds an Event, computing Percent from loaded and total.
func NewEvent(dir Direction, loaded, total int64) Event {
	evt := Event{Direction: dir, Loaded: loaded, Total: total}
	switch {
	case total > 0:
		evt.Percent = float64(loaded) / float64(total) * 100
	case total == 0:
		evt.Percent = 100
	default:
		evt.Total = Unknown
	}
	return evt
}

// A Reader counts the bytes read through it and emits an Event after
// every read that returned data.
type Reader struct {
	r      io.Reader
	dir    Direction
	total  int64
	loaded int64
	fn     Func
}

// NewReader wraps r so that fn observes every chunk read from it.
//
// Upload readers emit for every chunk, with Total set to Unknown when
// total is negative. Download readers with an unknown total never emit,
// since the receiving side has nothing meaningful to report.
func NewReader(r io.Reader, total int64, dir Direction, fn Func) *Reader {
	if total < 0 {
		total = Unknown
	}
	return &Reader{r: r, dir: dir, total: total, fn: fn}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.loaded += int64(n)
		r.emit()
	}
	return n, err
}

// Close closes the underlying reader if it is an io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Loaded returns the number of bytes read so far.
func (r *Reader) Loaded() int64 {
	return r.loaded
}

func (r *Reader) emit() {
	if r.fn == nil {
		return
	}
	if r.dir == Download && r.total == Unknown {
		return
	}
	loaded := r.loaded
	if r.total >= 0 && loaded > r.total {
		loaded = r.total
	}
	r.fn(NewEvent(r.dir, loaded, r.total))
}
