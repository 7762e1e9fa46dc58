package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
)

// LogLevel represents the severity level of log messages
type LogLevel = zapcore.Level

const (
	DEBUG LogLevel = zapcore.DebugLevel
	INFO  LogLevel = zapcore.InfoLevel
	WARN  LogLevel = zapcore.WarnLevel
	ERROR LogLevel = zapcore.ErrorLevel
	FATAL LogLevel = zapcore.FatalLevel
)

// Logger interface defines the contract for all loggers
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)

	// Additional utility methods
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	SetLevel(level LogLevel)
	GetLevel() LogLevel
	Sync() error
}

// ZapLogger implements Logger on top of a zap SugaredLogger.
// Loggers derived with WithField share the level and the underlying sink.
type ZapLogger struct {
	config *types.LoggerConfig
	sugar  *zap.SugaredLogger
	level  zap.AtomicLevel
	closer io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
