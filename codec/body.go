// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// A Kind identifies which variant of the Body union is populated.
type Kind int

const (
	// KindNone is an absent body.
	KindNone Kind = iota
	// KindBytes is a raw binary body sent unmodified.
	KindBytes
	// KindText is a UTF-8 string body.
	KindText
	// KindJSON is a structured value serialized as JSON.
	KindJSON
	// KindForm is a multipart form streamed to the server.
	KindForm
	// KindValue is a scalar sent as its string conversion.
	KindValue
)

var kindNames = []string{
	"none",
	"bytes",
	"text",
	"json",
	"form",
	"value",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// A Body is a request payload. The zero value is an absent body.
//
// Body values are immutable and safe to reuse across attempts and
// goroutines, provided any Form they carry is not modified.
type Body struct {
	kind  Kind
	data  []byte
	text  string
	value any
	form  *Form
}

// None is the absent body.
var None = Body{}

// Bytes returns a body that sends b unmodified.
func Bytes(b []byte) Body {
	return Body{kind: KindBytes, data: b}
}

// Text returns a body that sends s as UTF-8.
func Text(s string) Body {
	return Body{kind: KindText, text: s}
}

// JSON returns a body that sends the JSON serialization of v.
func JSON(v any) Body {
	return Body{kind: KindJSON, value: v}
}

// Multipart returns a body that streams f as multipart/form-data. A nil
// form produces an absent body.
func Multipart(f *Form) Body {
	if f == nil {
		return None
	}
	return Body{kind: KindForm, form: f}
}

// Value returns a body that sends the string conversion of v.
func Value(v any) Body {
	return Body{kind: KindValue, value: v}
}

// Kind returns the populated variant.
func (b Body) Kind() Kind {
	return b.kind
}

// IsNone reports whether b is the absent body.
func (b Body) IsNone() bool {
	return b.kind == KindNone
}

// Form returns the multipart form of a KindForm body, or nil.
func (b Body) Form() *Form {
	return b.form
}

// From classifies an arbitrary payload into a Body. The checks run in
// this order: Body, form, byte slice, string, nil, object, and finally
// string conversion. Objects are maps, structs, and non-nil pointers to
// either, excluding time.Time and *regexp.Regexp.
func From(v any) Body {
	switch x := v.(type) {
	case Body:
		return x
	case *Form:
		return Multipart(x)
	case Form:
		return Multipart(&x)
	case []byte:
		return Bytes(x)
	case string:
		return Text(x)
	case nil:
		return None
	}
	if isObject(v) {
		return JSON(v)
	}
	return Value(v)
}

func isObject(v any) bool {
	switch v.(type) {
	case time.Time, *time.Time, regexp.Regexp, *regexp.Regexp:
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return true
	default:
		return false
	}
}

// Stringify converts v to text the way scalar bodies and query values
// are sent. Slices and arrays are joined with commas.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	case encoding.TextMarshaler:
		if b, err := x.MarshalText(); err == nil {
			return string(b)
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
