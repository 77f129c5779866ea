// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"net"
	"strconv"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// Not means a retry after this error is very unlikely to succeed. Every
// other category means a retry has some prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout method that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED). The service may be restarting.
	ConnRefused
	// ConnReset indicates the remote host reset an active connection
	// (ECONNRESET), typical of load balancers and hasty deployments.
	ConnReset
	// Closed indicates the connection was closed before a complete
	// response was received.
	Closed
	// DNS indicates a temporary name resolution failure.
	DNS
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"Closed",
	"DNS",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err, looking through
// wrapped causes. A nil error is Not transient. Categorize never
// consults a Temporary method, as its semantics are unclear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return DNS
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return Closed
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
