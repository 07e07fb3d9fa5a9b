package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
	// With returns a child logger that adds the key/value pairs to every entry
	With(fields ...interface{}) Logger
}

// ZeroLogger implements Logger on top of zerolog. Fields are passed as
// alternating key/value pairs.
type ZeroLogger struct {
	log zerolog.Logger
}

// Options configures the logger output
type Options struct {
	Level   string
	Console bool
	Output  io.Writer
}

// New creates a logger writing JSON lines, or human-readable lines when
// Console is set.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
	return &ZeroLogger{log: zl}
}

// NewSimpleLogger creates a console logger at info level
func NewSimpleLogger() Logger {
	return New(Options{Level: "info", Console: true})
}

// Nop returns a logger that discards everything, for tests
func Nop() Logger {
	return &ZeroLogger{log: zerolog.Nop()}
}

// ParseLevel converts a level name into a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Info logs an info message
func (l *ZeroLogger) Info(msg string, fields ...interface{}) {
	withFields(l.log.Info(), fields).Msg(msg)
}

// Error logs an error message
func (l *ZeroLogger) Error(msg string, err error, fields ...interface{}) {
	withFields(l.log.Error().Err(err), fields).Msg(msg)
}

// Warn logs a warning message
func (l *ZeroLogger) Warn(msg string, fields ...interface{}) {
	withFields(l.log.Warn(), fields).Msg(msg)
}

// Debug logs a debug message
func (l *ZeroLogger) Debug(msg string, fields ...interface{}) {
	withFields(l.log.Debug(), fields).Msg(msg)
}

// Fatal logs a fatal error and exits
func (l *ZeroLogger) Fatal(msg string, err error, fields ...interface{}) {
	withFields(l.log.Fatal().Err(err), fields).Msg(msg)
}

// With returns a child logger carrying the given fields
func (l *ZeroLogger) With(fields ...interface{}) Logger {
	return &ZeroLogger{log: l.log.With().Fields(pairs(fields)).Logger()}
}

func withFields(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	if len(fields) == 0 {
		return e
	}
	return e.Fields(pairs(fields))
}

// pairs turns alternating key/value arguments into a map. A trailing key
// without a value is kept under "extra".
func pairs(fields []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(fields)/2+1)
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		if i+1 >= len(fields) {
			m["extra"] = key
			break
		}
		m[key] = fields[i+1]
	}
	return m
}
