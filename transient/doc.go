// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors as transient or
// non-transient. The client uses it to decide whether a failed attempt
// timed out, and it is handy for writing custom retry deciders and for
// bucketing error metrics.
//
// Package transient depends only on the standard library.
package transient
