// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build js && wasm

package browser

import (
	"errors"
	"io"
	"net/http"
	"syscall/js"
	"time"

	"github.com/gogama/fetchx/codec"
)

var errNoXHR = errors.New("fetchx/browser: XMLHttpRequest is not available")

func newXHR() XHR {
	return &native{v: js.Global().Get("XMLHttpRequest").New()}
}

// native wraps a browser XMLHttpRequest. Its listeners run on the
// browser event loop.
type native struct {
	v     js.Value
	funcs []js.Func
}

func (x *native) Open(method, url string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = jsError(r)
		}
	}()
	x.v.Call("open", method, url, true)
	return nil
}

func (x *native) SetRequestHeader(name, value string) {
	x.v.Call("setRequestHeader", name, value)
}

func (x *native) SetResponseType(responseType string) {
	x.v.Set("responseType", responseType)
}

func (x *native) SetTimeout(d time.Duration) {
	x.v.Set("timeout", d.Milliseconds())
}

func (x *native) On(eventType string, fn func(ProgressEvent)) {
	x.listen(x.v, eventType, fn)
}

func (x *native) UploadOn(eventType string, fn func(ProgressEvent)) {
	x.listen(x.v.Get("upload"), eventType, fn)
}

func (x *native) listen(target js.Value, eventType string, fn func(ProgressEvent)) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		evt := ProgressEvent{Type: eventType}
		if len(args) > 0 {
			e := args[0]
			if lc := e.Get("lengthComputable"); lc.Type() == js.TypeBoolean {
				evt.LengthComputable = lc.Bool()
				evt.Loaded = int64(e.Get("loaded").Float())
				evt.Total = int64(e.Get("total").Float())
			}
		}
		fn(evt)
		if eventType == EventLoadEnd {
			x.release()
		}
		return nil
	})
	x.funcs = append(x.funcs, f)
	target.Call("addEventListener", eventType, f)
}

// release frees the Go callbacks. Send registers a loadend listener so
// that it runs once the request has ended.
func (x *native) release() {
	if len(x.funcs) == 0 {
		return
	}
	funcs := x.funcs
	x.funcs = nil
	for _, f := range funcs {
		f.Release()
	}
}

func (x *native) Send(body *codec.Encoded) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = jsError(r)
		}
	}()
	x.On(EventLoadEnd, func(ProgressEvent) {})
	if body == nil || body.Empty() {
		x.v.Call("send")
		return nil
	}
	if form := body.Form(); form != nil {
		fd, err := formData(form)
		if err != nil {
			return err
		}
		x.v.Call("send", fd)
		return nil
	}
	x.v.Call("send", uint8Array(body.Bytes()))
	return nil
}

func (x *native) Abort() {
	x.v.Call("abort")
}

func (x *native) Status() int {
	return x.v.Get("status").Int()
}

func (x *native) StatusText() string {
	return x.v.Get("statusText").String()
}

func (x *native) ResponseHeaders() http.Header {
	return ParseHeaders(x.v.Call("getAllResponseHeaders").String())
}

func (x *native) Response() []byte {
	ab := x.v.Get("response")
	if ab.IsNull() || ab.IsUndefined() {
		return nil
	}
	u8 := js.Global().Get("Uint8Array").New(ab)
	b := make([]byte, u8.Get("length").Int())
	js.CopyBytesToGo(b, u8)
	return b
}

func formData(form *codec.Form) (js.Value, error) {
	fd := js.Global().Get("FormData").New()
	for _, field := range form.Fields {
		fd.Call("append", field.Name, field.Value)
	}
	for _, file := range form.Files {
		if file.Open == nil {
			return js.Undefined(), &codec.UploadError{Field: file.Field, Err: errors.New("nil Open func")}
		}
		rc, err := file.Open()
		if err != nil {
			return js.Undefined(), &codec.UploadError{Field: file.Field, Err: err}
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return js.Undefined(), &codec.UploadError{Field: file.Field, Err: err}
		}
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		opts := js.Global().Get("Object").New()
		opts.Set("type", ct)
		parts := js.Global().Get("Array").New(uint8Array(b))
		blob := js.Global().Get("Blob").New(parts, opts)
		fd.Call("append", file.Field, blob, file.Name)
	}
	return fd, nil
}

func uint8Array(b []byte) js.Value {
	u8 := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(u8, b)
	return u8
}

func jsError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errNoXHR
}
