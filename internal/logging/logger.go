// Package logging provides the slog-backed binding.Logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"firebasebindings/internal/binding"
)

// Logger adapts a slog.Logger to binding.Logger.
type Logger struct {
	slogger *slog.Logger
}

// NewLogger builds a logger that writes to stdout.
func NewLogger(config binding.LoggingConfig) (binding.Logger, error) {
	return NewLoggerTo(os.Stdout, config)
}

// NewLoggerTo builds a logger that writes to w.
func NewLoggerTo(w io.Writer, config binding.LoggingConfig) (binding.Logger, error) {
	level, err := parseLogLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(config.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{slogger: slog.New(handler)}, nil
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.log(slog.LevelDebug, msg, keysAndValues)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.log(slog.LevelInfo, msg, keysAndValues)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.log(slog.LevelWarn, msg, keysAndValues)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues)
}

// With returns a child logger carrying the given fields on every record.
func (l *Logger) With(keysAndValues ...any) binding.Logger {
	attrs := toAttrs(keysAndValues)
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return &Logger{slogger: l.slogger.With(args...)}
}

func (l *Logger) log(level slog.Level, msg string, keysAndValues []any) {
	ctx := context.Background()
	if !l.slogger.Enabled(ctx, level) {
		return
	}
	l.slogger.LogAttrs(ctx, level, msg, toAttrs(keysAndValues)...)
}

// toAttrs pairs up keys and values. A trailing key without a value and
// non-string keys are dropped.
func toAttrs(keysAndValues []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		value := keysAndValues[i+1]
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		attrs = append(attrs, slog.Any(key, value))
	}
	return attrs
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}
