// Package logging adapts zap to the client's Logger interface.
package logging

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements stripe.Logger on top of a *zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// New wraps logger. A nil logger discards everything.
func New(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{logger: logger}
}

// NewConsole builds a human-readable logger writing to stderr. Debug entries
// are only emitted when verbose is set.
func NewConsole(verbose bool) (*ZapLogger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building console logger: %w", err)
	}

	return New(logger), nil
}

// Debug logs at debug level.
func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, toFields(fields)...)
}

// Info logs at info level.
func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, toFields(fields)...)
}

// Warn logs at warn level.
func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, toFields(fields)...)
}

// Error logs at error level.
func (l *ZapLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, toFields(fields)...)
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// Zap returns the wrapped logger.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.logger
}

func toFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		if err, ok := fields[key].(error); ok {
			out = append(out, zap.NamedError(key, err))

			continue
		}

		out = append(out, zap.Any(key, fields[key]))
	}

	return out
}
