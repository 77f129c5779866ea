// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogEventAdapter adapts a zerolog event to LogEvent. A nil event,
// which zerolog returns for disabled levels, is safe to use.
type LogEventAdapter struct {
	event  *zerolog.Event
	filter *SensitiveDataFilter
}

func (a *LogEventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

func (a *LogEventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

func (a *LogEventAdapter) Err(err error) LogEvent {
	return &LogEventAdapter{event: a.event.Err(err), filter: a.filter}
}

func (a *LogEventAdapter) Str(key, value string) LogEvent {
	if a.filter != nil {
		value = a.filter.FilterString(key, value)
	}
	return &LogEventAdapter{event: a.event.Str(key, value), filter: a.filter}
}

func (a *LogEventAdapter) Int(key string, value int) LogEvent {
	return &LogEventAdapter{event: a.event.Int(key, value), filter: a.filter}
}

func (a *LogEventAdapter) Int64(key string, value int64) LogEvent {
	return &LogEventAdapter{event: a.event.Int64(key, value), filter: a.filter}
}

func (a *LogEventAdapter) Dur(key string, d time.Duration) LogEvent {
	return &LogEventAdapter{event: a.event.Dur(key, d), filter: a.filter}
}

func (a *LogEventAdapter) Interface(key string, i any) LogEvent {
	if a.filter != nil {
		i = a.filter.FilterValue(key, i)
	}
	return &LogEventAdapter{event: a.event.Interface(key, i), filter: a.filter}
}
