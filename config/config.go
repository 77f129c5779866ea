// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gogama/fetchx/logger"
	"github.com/gogama/fetchx/request"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FETCHX_"

// Backend names accepted by client.backend.
const (
	BackendAuto    = "auto"
	BackendServer  = "server"
	BackendBrowser = "browser"
)

// Config is the root of the loaded settings.
type Config struct {
	Client ClientConfig `koanf:"client"`
	Log    LogConfig    `koanf:"log"`

	k *koanf.Koanf
}

// ClientConfig holds the request defaults and client wiring.
type ClientConfig struct {
	// BaseURL is joined to relative request URLs.
	BaseURL string `koanf:"baseurl" validate:"omitempty,http_url"`
	// Headers are sent with every request unless overridden.
	Headers map[string]string `koanf:"headers" validate:"dive,keys,required,endkeys"`
	// Timeout bounds each attempt. Zero means none.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
	// Retry is the retry budget of requests that do not set their own.
	Retry int `koanf:"retry" validate:"gte=0,lte=100"`
	// RetryDelay is the wait between attempts of requests that do not
	// set their own.
	RetryDelay time.Duration `koanf:"retrydelay" validate:"gte=0"`
	// Backend selects the attempt backend.
	Backend string `koanf:"backend" validate:"oneof=auto server browser"`
	// RateLimit caps attempts per second. Zero disables the limiter.
	RateLimit float64 `koanf:"ratelimit" validate:"gte=0"`
	// RateBurst is the limiter burst. Zero means 1.
	RateBurst int `koanf:"rateburst" validate:"gte=0"`
}

// LogConfig configures the client logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty"`
	File   string `koanf:"file"`
}

// An Option adds a source to Load.
type Option func(*loader)

type loader struct {
	file    string
	yaml    []byte
	environ func() []string
}

// WithFile loads the YAML file at path. The file must exist.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithYAML loads the YAML document b. It is applied after any file.
func WithYAML(b []byte) Option {
	return func(l *loader) {
		l.yaml = b
	}
}

// WithEnviron replaces os.Environ as the source of environment
// variables.
func WithEnviron(fn func() []string) Option {
	return func(l *loader) {
		l.environ = fn
	}
}

// Load builds and validates a Config from defaults, the optional YAML
// sources, and the environment.
func Load(opts ...Option) (*Config, error) {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if l.file != "" {
		if err := k.Load(file.Provider(l.file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.file, err)
		}
	}
	if l.yaml != nil {
		if err := k.Load(rawbytes.Provider(l.yaml), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   l.environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"client.baseurl":    "",
		"client.timeout":    "0s",
		"client.retry":      0,
		"client.retrydelay": request.DefaultRetryDelay.String(),
		"client.backend":    BackendAuto,
		"client.ratelimit":  0,
		"client.rateburst":  0,
		"log.level":         "info",
		"log.pretty":        false,
		"log.file":          "",
	}
}

func envKey(k, v string) (string, any) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	if name, ok := strings.CutPrefix(k, "client_headers_"); ok {
		return "client.headers." + strings.ReplaceAll(name, "_", "-"), v
	}
	return strings.ReplaceAll(k, "_", "."), v
}

// String returns the raw value of key as a string, whatever source set
// it.
func (c *Config) String(key string) string {
	if c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Apply writes the base URL, headers, and timeout into d.
func (c *ClientConfig) Apply(d *request.Defaults) {
	d.Update(func(v *request.DefaultValues) {
		if c.BaseURL != "" {
			v.BaseURL = c.BaseURL
		}
		for name, value := range c.Headers {
			v.Header.Set(name, value)
		}
		if c.Timeout > 0 {
			v.Timeout = c.Timeout
		}
	})
}

// Prepare fills in the retry settings of cfg which it leaves unset.
func (c *ClientConfig) Prepare(cfg *request.Config) {
	if cfg.Retry == 0 {
		cfg.Retry = c.Retry
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = c.RetryDelay
	}
}

// Logger builds the logger described by c. Output goes to w unless a
// log file is configured; a nil w means standard output.
func (c *LogConfig) Logger(w io.Writer) *logger.ZeroLogger {
	return logger.NewWithOptions(logger.Options{
		Level:  c.Level,
		Pretty: c.Pretty,
		Writer: w,
		File:   c.File,
	})
}
