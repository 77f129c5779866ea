// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build !(js && wasm)

package browser

import (
	"net/http"
	"sync"
)

var defaultLoop = sync.OnceValue(NewLoop)

func newXHR() XHR {
	return NewEmulated(defaultLoop(), http.DefaultClient, nil)
}
