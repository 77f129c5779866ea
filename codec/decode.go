// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"mime"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/gogama/fetchx/internal/json"
)

// A ResponseType is the caller's hint for how to decode a response
// body. The empty ResponseType behaves as ResponseJSON.
type ResponseType string

const (
	ResponseJSON        ResponseType = "json"
	ResponseText        ResponseType = "text"
	ResponseBlob        ResponseType = "blob"
	ResponseArrayBuffer ResponseType = "arraybuffer"
	ResponseStream      ResponseType = "stream"
	ResponseDocument    ResponseType = "document"
)

// Valid reports whether rt is empty or one of the defined constants.
func (rt ResponseType) Valid() bool {
	switch rt {
	case "", ResponseJSON, ResponseText, ResponseBlob, ResponseArrayBuffer, ResponseStream, ResponseDocument:
		return true
	default:
		return false
	}
}

// A ParseError reports a response body that claimed to be JSON but was
// not. Raw holds the body as text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "fetchx/codec: invalid JSON response body: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	binaryType    = regexp.MustCompile(`(?i)(application|image|audio|video|octet-stream)`)
	nonBinaryType = regexp.MustCompile(`(?i)(json|text|xml)`)
	documentType  = regexp.MustCompile(`(?i)(html|xml)`)
)

// IsBinary reports whether contentType names binary content.
func IsBinary(contentType string) bool {
	return binaryType.MatchString(contentType) && !nonBinaryType.MatchString(contentType)
}

// IsJSON reports whether contentType is application/json or a +json
// structured syntax type.
func IsJSON(contentType string) bool {
	mt := mediaType(contentType)
	return mt == ContentTypeJSON || strings.HasSuffix(mt, "+json")
}

// Decode turns a buffered response body into a value. The first
// matching rule wins:
//
//   - blob and arraybuffer hints return the raw []byte;
//   - a text hint returns a string;
//   - a binary content type returns the raw []byte;
//   - a JSON content type returns nil for an empty body, otherwise the
//     parsed value, or a *ParseError;
//   - a document hint with an HTML or XML content type returns the
//     parsed *html.Node;
//   - anything else is returned as a string.
//
// Strings are transcoded to UTF-8 from the declared charset.
func Decode(rt ResponseType, contentType string, body []byte) (any, error) {
	switch {
	case rt == ResponseBlob || rt == ResponseArrayBuffer:
		return body, nil
	case rt == ResponseText:
		return Text(contentType, body), nil
	case IsBinary(contentType):
		return body, nil
	case IsJSON(contentType):
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, &ParseError{Raw: Text(contentType, body), Err: err}
		}
		return v, nil
	case rt == ResponseDocument && documentType.MatchString(contentType):
		return html.Parse(strings.NewReader(Text(contentType, body)))
	default:
		return Text(contentType, body), nil
	}
}

// Text decodes body as a string in the charset declared by contentType.
// Unknown charsets and UTF-8 bodies are returned as is, minus any byte
// order mark.
func Text(contentType string, body []byte) string {
	if enc := lookupCharset(contentType); enc != nil {
		if b, err := enc.NewDecoder().Bytes(body); err == nil {
			return string(b)
		}
	}
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(body) {
		return strings.ToValidUTF8(string(body), "�")
	}
	return string(body)
}

func lookupCharset(contentType string) encoding.Encoding {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(params["charset"]))
	if name == "" || name == "utf-8" || name == "utf8" {
		return nil
	}
	if enc, _ := charset.Lookup(name); enc != nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	return nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

var filenamePattern = regexp.MustCompile(`(?i)filename\*?=(?:UTF-8'')?"?([^";]+)"?`)

// Filename extracts the file name from a Content-Disposition header
// value. It returns the empty string if there is none or if the name
// cannot be decoded.
func Filename(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
		if name, ok := params["filename"]; ok {
			return unescape(name)
		}
	}
	m := filenamePattern.FindStringSubmatch(contentDisposition)
	if m == nil {
		return ""
	}
	return unescape(m[1])
}

func unescape(name string) string {
	s, err := url.PathUnescape(name)
	if err != nil {
		return ""
	}
	return s
}
