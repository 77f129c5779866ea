// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZeroLogger implements Logger with zerolog. Values of fields whose
// name looks sensitive are masked.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

var _ Logger = (*ZeroLogger)(nil)

// Options configures NewWithOptions.
type Options struct {
	// Level is a zerolog level name. Unknown names mean "info".
	Level string
	// Pretty selects human-readable console output.
	Pretty bool
	// Writer receives the output. Nil means standard output.
	Writer io.Writer
	// File, if set, sends output to a size-rotated file instead of
	// Writer.
	File string
	// MaxSizeMB is the rotation size of File. Zero means 100.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept. Zero keeps all.
	MaxBackups int
	// Filter masks sensitive fields. Nil means DefaultFilterConfig.
	Filter *FilterConfig
}

// New returns a ZeroLogger writing to standard output.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOptions(Options{Level: level, Pretty: pretty})
}

// NewWithWriter returns a ZeroLogger writing JSON lines to w.
func NewWithWriter(w io.Writer, level string) *ZeroLogger {
	return newZeroLogger(w, level, false, nil)
}

// NewWithOptions returns a ZeroLogger configured by opts.
func NewWithOptions(opts Options) *ZeroLogger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.File != "" {
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		opts.Pretty = false
	}
	return newZeroLogger(w, opts.Level, opts.Pretty, opts.Filter)
}

func newZeroLogger(w io.Writer, level string, pretty bool, filter *FilterConfig) *ZeroLogger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)
	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(filter)}
}

// WithFields returns a logger which adds fields to every event.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.filter != nil {
		fields = l.filter.FilterFields(fields)
	}
	zl := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &zl, filter: l.filter}
}

func (l *ZeroLogger) Debug() LogEvent {
	return &LogEventAdapter{event: l.zlog.Debug(), filter: l.filter}
}

func (l *ZeroLogger) Info() LogEvent {
	return &LogEventAdapter{event: l.zlog.Info(), filter: l.filter}
}

func (l *ZeroLogger) Warn() LogEvent {
	return &LogEventAdapter{event: l.zlog.Warn(), filter: l.filter}
}

func (l *ZeroLogger) Error() LogEvent {
	return &LogEventAdapter{event: l.zlog.Error(), filter: l.filter}
}

// Nop returns a Logger which discards everything.
func Nop() Logger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}
