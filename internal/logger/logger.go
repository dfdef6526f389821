// Package logger provides the leveled, structured logger used by every
// fskit component. It wraps log/slog with a fifth severity, TRACE, below
// slog.LevelDebug, matching the five-level scheme (TRACE, DEBUG, INFO,
// WARNING, ERROR) that gcsfuse's internal/logger exposes.
//
// Components never write to stdout/stderr directly. The executor holds
// an optional *Logger in its Config and falls back to the process
// default (SetDefault/Default) when none is supplied; the copy,
// atomicwrite and dirwalk packages do not log.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Level is a logging severity. The numeric values match slog's own
// levels so TRACE can be expressed as an offset below Debug.
type Level = slog.Level

const (
	LevelTrace   Level = slog.LevelDebug - 4
	LevelDebug   Level = slog.LevelDebug
	LevelInfo    Level = slog.LevelInfo
	LevelWarning Level = slog.LevelWarn
	LevelError   Level = slog.LevelError
	LevelOff     Level = slog.LevelError + 4
)

var levelNames = map[slog.Leveler]string{
	LevelTrace:   "TRACE",
	LevelWarning: "WARNING",
}

// Format selects the handler used to render log records.
type Format int

const (
	Text Format = iota
	JSON
)

// Logger is a thin wrapper over *slog.Logger that adds a Tracef level
// and printf-style helpers, mirroring the call surface gcsfuse's
// internal/logger exposes to the rest of the codebase.
type Logger struct {
	slog *slog.Logger
}

// New builds a Logger writing to w at the given format, emitting records
// at level and above.
func New(w io.Writer, level Level, format Format) *Logger {
	programLevel := new(slog.LevelVar)
	programLevel.Set(level)
	return &Logger{slog: slog.New(newHandler(w, programLevel, format))}
}

func newHandler(w io.Writer, level *slog.LevelVar, format Format) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				lvl := a.Value.Any().(slog.Level)
				if name, ok := levelNames[lvl]; ok {
					a.Value = slog.StringValue(name)
				}
				a.Key = "severity"
			case slog.MessageKey:
				a.Key = "message"
			}
			return a
		},
	}
	if format == JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func (l *Logger) Tracef(format string, args ...any) { l.logf(LevelTrace, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarning, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	l.slog.Log(context.Background(), level, sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	SetDefault(New(os.Stderr, LevelInfo, Text))
}

// SetDefault replaces the package-level default logger. Tests use this
// to redirect output into a buffer, mirroring
// redirectLogsToGivenBuffer in gcsfuse's logger_test.go.
func SetDefault(l *Logger) { defaultLogger.Store(l) }

// Default returns the current package-level default logger.
func Default() *Logger { return defaultLogger.Load() }

func Tracef(format string, args ...any) { Default().Tracef(format, args...) }
func Debugf(format string, args ...any) { Default().Debugf(format, args...) }
func Infof(format string, args ...any)  { Default().Infof(format, args...) }
func Warnf(format string, args ...any)  { Default().Warnf(format, args...) }
func Errorf(format string, args ...any) { Default().Errorf(format, args...) }
