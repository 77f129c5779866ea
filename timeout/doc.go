// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting attempt timeouts,
// including on retries. A timeout of zero means the attempt is not
// bounded by time.
//
// The DefaultPolicy uses the timeout resolved for the attempt from the
// request Config and the defaults. Fixed and Adaptive ignore the
// request's own setting.
package timeout
