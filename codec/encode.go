// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gogama/fetchx/internal/json"
)

// ContentTypeJSON is the content type set for JSON bodies.
const ContentTypeJSON = "application/json"

// A StringifyError reports that a JSON body could not be serialized.
type StringifyError struct {
	Err error
}

func (e *StringifyError) Error() string {
	return "fetchx/codec: cannot serialize JSON body: " + e.Err.Error()
}

func (e *StringifyError) Unwrap() error {
	return e.Err
}

// An Encoded is a request body ready for the wire. Its Open method may
// be called once per attempt.
type Encoded struct {
	// Kind is the variant of the source Body.
	Kind Kind
	// ContentType is the content type computed for the body, or empty
	// if the codec leaves the header alone.
	ContentType string
	// ContentLength is the body size in bytes, or -1 for a streamed
	// multipart body whose size is not known in advance.
	ContentLength int64

	data     []byte
	form     *Form
	boundary string
}

// Encode serializes b. Serialization failures are returned before any
// I/O takes place, as a *StringifyError.
//
// The header h is consulted, never modified. Use Apply to merge the
// computed headers.
func Encode(b Body, h http.Header) (*Encoded, error) {
	enc := &Encoded{Kind: b.kind}
	switch b.kind {
	case KindNone:
		return enc, nil
	case KindBytes:
		enc.data = b.data
	case KindText:
		enc.data = []byte(b.text)
	case KindValue:
		enc.data = []byte(Stringify(b.value))
	case KindJSON:
		data, err := json.Marshal(b.value)
		if err != nil {
			return nil, &StringifyError{Err: err}
		}
		enc.data = data
		if h.Get("Content-Type") == "" {
			enc.ContentType = ContentTypeJSON
		}
	case KindForm:
		enc.form = b.form
		enc.boundary = multipart.NewWriter(io.Discard).Boundary()
		enc.ContentType = "multipart/form-data; boundary=" + enc.boundary
		enc.ContentLength = -1
		return enc, nil
	}
	enc.ContentLength = int64(len(enc.data))
	return enc, nil
}

// Empty reports whether there is no body to send.
func (enc *Encoded) Empty() bool {
	return enc.Kind == KindNone
}

// Bytes returns the buffered body. It is nil for empty and multipart
// bodies.
func (enc *Encoded) Bytes() []byte {
	return enc.data
}

// Apply merges the computed Content-Type and Content-Length into h.
func (enc *Encoded) Apply(h http.Header) {
	if enc.ContentType != "" {
		h.Set("Content-Type", enc.ContentType)
	}
	if enc.Kind != KindNone && enc.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(enc.ContentLength, 10))
	}
}

// Open returns a fresh reader over the body, or nil for an empty body.
//
// A multipart body is produced by a goroutine writing into a pipe. Any
// failure while producing it is reported to the reader as an
// *UploadError. Closing the reader stops the producer.
func (enc *Encoded) Open() io.ReadCloser {
	switch {
	case enc.Kind == KindNone:
		return nil
	case enc.form != nil:
		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)
		_ = mw.SetBoundary(enc.boundary)
		go func() {
			_ = pw.CloseWithError(enc.form.write(mw))
		}()
		return pr
	default:
		return io.NopCloser(bytes.NewReader(enc.data))
	}
}

// Form returns the source form of a multipart body, or nil.
func (enc *Encoded) Form() *Form {
	return enc.form
}
