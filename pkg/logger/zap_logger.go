package logger

import (
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
)

// New creates a new ZapLogger with the specified log level
func New(level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	return NewWithConfig(config)
}

func NewWithConfig(config *types.LoggerConfig) *ZapLogger {
	// Ensure file path exists if using file output
	if config.Output == "file" && config.FilePath == "" {
		config.FilePath = getDefaultLogPath()
	}

	ws, closer := createWriter(config)
	return newWithSyncer(config, ws, closer)
}

func newWithSyncer(config *types.LoggerConfig, ws zapcore.WriteSyncer, closer io.Closer) *ZapLogger {
	level := zap.NewAtomicLevelAt(ParseLogLevel(config.Level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeLevel = levelEncoder(config)
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	if config.Format == "json" {
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	} else {
		layout := config.TimestampFormat
		if layout == "" {
			layout = time.RFC3339
		}
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	}

	var encoder zapcore.Encoder
	if config.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	opts := []zap.Option{}
	if config.ShowCaller {
		// skip the ZapLogger wrapper frames
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	base := zap.New(zapcore.NewCore(encoder, ws, level), opts...)
	return &ZapLogger{
		config: config,
		sugar:  base.Sugar(),
		level:  level,
		closer: closer,
	}
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugf(msg, args...)
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, args ...any) {
	l.sugar.Infof(msg, args...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnf(msg, args...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
}

// Fatal logs a fatal message and exits the program
func (l *ZapLogger) Fatal(msg string, args ...any) {
	l.sugar.Fatalf(msg, args...)
}

// WithField returns a new logger with an additional field
func (l *ZapLogger) WithField(key string, value any) Logger {
	return l.derive(l.sugar.With(key, value))
}

// WithFields returns a new logger with additional fields
func (l *ZapLogger) WithFields(fields map[string]any) Logger {
	// Sort keys for consistent output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return l.derive(l.sugar.With(kv...))
}

func (l *ZapLogger) derive(sugar *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{
		config: l.config,
		sugar:  sugar,
		level:  l.level,
		closer: l.closer,
	}
}

// SetLevel changes the log level of this logger and every logger derived from it
func (l *ZapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(level)
}

// GetLevel returns the current log level
func (l *ZapLogger) GetLevel() LogLevel {
	return l.level.Level()
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// Close flushes and releases the file or async buffer behind the logger
func (l *ZapLogger) Close() error {
	_ = l.sugar.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
