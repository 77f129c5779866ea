// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaskValue replaces masked values.
const DefaultMaskValue = "***"

// FilterConfig lists the field names treated as sensitive. A field is
// sensitive if its lower-cased name contains any entry.
type FilterConfig struct {
	SensitiveFields []string
	MaskValue       string
}

// DefaultFilterConfig covers credentials commonly found in request
// headers and URLs.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "secret",
			"token", "api_key", "apikey", "api-key",
			"authorization", "cookie", "credential",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive values before they are logged.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter returns a filter for config. A nil config
// means DefaultFilterConfig.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks value if key is sensitive, and otherwise masks
// any password embedded in a URL value.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if value == "" {
		return value
	}
	if f.sensitive(key) {
		return f.config.MaskValue
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return f.maskURL(value)
	}
	return value
}

// FilterValue masks value if key is sensitive. Headers and string maps
// are filtered entry by entry.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	if f.sensitive(key) {
		return f.config.MaskValue
	}
	switch v := value.(type) {
	case string:
		return f.FilterString(key, v)
	case http.Header:
		return f.FilterHeader(v)
	case map[string]any:
		return f.FilterFields(v)
	default:
		return value
	}
}

// FilterFields filters every entry of fields into a new map.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = f.FilterValue(k, v)
	}
	return out
}

// FilterHeader returns a copy of h with sensitive header values masked.
func (f *SensitiveDataFilter) FilterHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		if f.sensitive(k) {
			out[k] = []string{f.config.MaskValue}
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func (f *SensitiveDataFilter) sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range f.config.SensitiveFields {
		if strings.Contains(key, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func (f *SensitiveDataFilter) maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), f.config.MaskValue)
	return u.String()
}
