// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is the small leveled-logging facade crashsym's loader uses
// to report tolerable parse anomalies (a dropped STACK record, an
// overlapping FUNC, a duplicate FILE id) without making them errors. It
// mirrors the shape of the logger the PE parser this package was built
// from already depended on: a Logger that logs key/value pairs, a Filter
// that drops entries below a level, and a Helper with printf-style
// wrappers over both.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level is a logging severity.
type Level int8

// Levels, in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes one leveled log entry made up of alternating key/value
// pairs.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// NewStdLogger returns a Logger that writes entries to w, one per line.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := []byte(level.String())
	for i := 0; i+1 < len(keyvals); i += 2 {
		buf = append(buf, ' ')
		buf = append(buf, fmt.Sprintf("%v=%v", keyvals[i], keyvals[i+1])...)
	}
	buf = append(buf, '\n')
	_, err := l.w.Write(buf)
	return err
}

// NewFilter wraps logger, dropping any entry below level.
func NewFilter(logger Logger, level Level) Logger {
	return &filter{logger: logger, level: level}
}

type filter struct {
	logger Logger
	level  Level
}

// FilterLevel sets the minimum level a *filter built by NewFilter passes
// through. It exists so callers can write log.NewFilter(l, log.FilterLevel(log.LevelError))
// to read like a named option, even though FilterLevel is just Level
// itself.
func FilterLevel(level Level) Level { return level }

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, "msg", fmt.Sprintf(format, args...))
}

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, "msg", fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, "msg", fmt.Sprintf(format, args...))
}
