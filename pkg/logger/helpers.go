package logger

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// Helper functions for common logger operations

// NewFileLogger creates a logger that writes to a rotated file
func NewFileLogger(filename, level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	config.Output = "file"
	config.FilePath = filename
	config.Colors = false
	return NewWithConfig(config)
}

// NewWithWriter creates a plain text logger writing to w
func NewWithWriter(w io.Writer, level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	config.Colors = false
	return newWithSyncer(config, zapcore.AddSync(w), nil)
}

// NewMultiWriterLogger creates a logger that writes to multiple outputs
func NewMultiWriterLogger(level string, writers ...io.Writer) *ZapLogger {
	return NewWithWriter(io.MultiWriter(writers...), level)
}

// DefaultLogger returns a pre-configured logger with reasonable defaults
func DefaultLogger() *ZapLogger {
	return New("INFO")
}
