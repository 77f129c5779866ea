// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gogama/fetchx/internal/json"
)

// Params are query parameters. A value may be nil (sent as an empty
// value), a scalar, a slice or array (sent as one pair per element), or
// a map or struct (sent as its JSON text).
type Params map[string]any

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// IsAbsolute reports whether rawURL begins with an http or https
// scheme.
func IsAbsolute(rawURL string) bool {
	return absoluteURL.MatchString(rawURL)
}

// JoinURL joins a relative URL to a base with exactly one slash between
// them. An empty relative URL yields the base unchanged.
func JoinURL(baseURL, relativeURL string) string {
	if relativeURL == "" {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(relativeURL, "/")
}

// BuildURL returns the absolute URL for an attempt.
//
// Absolute http and https URLs are used as is; anything else is joined
// to baseURL. The fragment is set aside before the query is processed
// and re-appended unchanged. Params replace existing query values with
// the same key and the merged query is re-encoded with keys sorted.
// When params is empty the query is left exactly as written.
//
// BuildURL fails with CodeInvalidURL if rawURL is relative and there is
// no base, or if the result is not an http or https URL with a host.
func BuildURL(rawURL, baseURL string, params Params) (string, error) {
	full := rawURL
	if !IsAbsolute(rawURL) {
		if baseURL == "" {
			return "", invalidURL(rawURL, fmt.Errorf("relative URL %q without a base URL", rawURL))
		}
		full = JoinURL(baseURL, rawURL)
	}

	rest, fragment, hasFragment := strings.Cut(full, "#")
	if len(params) > 0 {
		path, query, _ := strings.Cut(rest, "?")
		values, err := url.ParseQuery(query)
		if err != nil {
			return "", invalidURL(full, err)
		}
		for k, v := range params {
			vs, err := paramValues(v)
			if err != nil {
				return "", invalidURL(full, fmt.Errorf("param %q: %w", k, err))
			}
			values[k] = vs
		}
		rest = path
		if encoded := values.Encode(); encoded != "" {
			rest += "?" + encoded
		}
	}
	if hasFragment {
		rest += "#" + fragment
	}

	u, err := url.Parse(rest)
	if err != nil {
		return "", invalidURL(rest, err)
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return "", invalidURL(rest, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return "", invalidURL(rest, fmt.Errorf("missing host"))
	}
	return rest, nil
}

func invalidURL(rawURL string, err error) *Error {
	return &Error{
		Message: "Invalid URL: " + rawURL,
		Code:    CodeInvalidURL,
		Err:     err,
	}
}

func paramValues(v any) ([]string, error) {
	if v == nil {
		return []string{""}, nil
	}
	if _, ok := v.([]byte); !ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			vs := make([]string, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				s, err := paramValue(rv.Index(i).Interface())
				if err != nil {
					return nil, err
				}
				vs = append(vs, s)
			}
			return vs, nil
		}
	}
	s, err := paramValue(v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func paramValue(v any) (string, error) {
	if isNil(v) {
		return "", nil
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		return string(b), err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		b, err := json.Marshal(v)
		return string(b), err
	default:
		return fmt.Sprint(v), nil
	}
}

// isNil reports whether v is nil or a typed nil pointer, map, or
// interface. Such values are sent as empty strings.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
