// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// A Form is a multipart/form-data payload. Fields are written before
// files, each group in slice order.
type Form struct {
	Fields []Field
	Files  []File
}

// A Field is a plain form value.
type Field struct {
	Name  string
	Value string
}

// A File is a form file part. Open is called once per attempt, so a
// retried request re-reads the file from the start.
type File struct {
	// Field is the form field name.
	Field string
	// Name is the file name reported to the server.
	Name string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Open returns a fresh reader over the file content.
	Open func() (io.ReadCloser, error)
}

// FileBytes returns a File part whose content is b.
func FileBytes(field, name string, b []byte) File {
	return File{
		Field: field,
		Name:  name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// FilePath returns a File part that reads the file at path. The base
// name of path is used as the file name.
func FilePath(field, path string) File {
	return File{
		Field: field,
		Name:  filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FileReader returns a File part backed by a single reader. Such a part
// can only be streamed once; a second attempt fails with an upload
// error.
func FileReader(field, name string, r io.Reader) File {
	used := false
	return File{
		Field: field,
		Name:  name,
		Open: func() (io.ReadCloser, error) {
			if used {
				return nil, errReaderConsumed
			}
			used = true
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, nil
			}
			return io.NopCloser(r), nil
		},
	}
}

// Add appends a plain field and returns the form.
func (f *Form) Add(name, value string) *Form {
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
	return f
}

// AddFile appends a file part and returns the form.
func (f *Form) AddFile(file File) *Form {
	f.Files = append(f.Files, file)
	return f
}

var errReaderConsumed = errors.New("fetchx/codec: file reader already consumed")

// An UploadError reports a failure while streaming a multipart body.
type UploadError struct {
	Field string
	Err   error
}

func (e *UploadError) Error() string {
	if e.Field == "" {
		return "fetchx/codec: upload stream: " + e.Err.Error()
	}
	return fmt.Sprintf("fetchx/codec: upload stream: field %q: %v", e.Field, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) write(mw *multipart.Writer) error {
	for _, field := range f.Fields {
		if err := mw.WriteField(field.Name, field.Value); err != nil {
			return &UploadError{Field: field.Name, Err: err}
		}
	}
	for _, file := range f.Files {
		if err := writeFile(mw, file); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return &UploadError{Err: err}
	}
	return nil
}

func writeFile(mw *multipart.Writer, file File) error {
	if file.Open == nil {
		return &UploadError{Field: file.Field, Err: errors.New("nil Open func")}
	}
	rc, err := file.Open()
	if err != nil {
		return &UploadError{Field: file.Field, Err: err}
	}
	defer func() {
		_ = rc.Close()
	}()
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", ct)
	w, err := mw.CreatePart(h)
	if err != nil {
		return &UploadError{Field: file.Field, Err: err}
	}
	if _, err = io.Copy(w, rc); err != nil {
		return &UploadError{Field: file.Field, Err: err}
	}
	return nil
}
