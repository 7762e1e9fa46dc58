package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
)

// ParseLogLevel converts a string to LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO // Default level
	}
}

// levelEncoder adds ANSI colours to the level only for terminal outputs
func levelEncoder(config *types.LoggerConfig) zapcore.LevelEncoder {
	if config.Colors && config.Format != "json" && (config.Output == "stdout" || config.Output == "stderr") {
		return zapcore.CapitalColorLevelEncoder
	}
	return zapcore.CapitalLevelEncoder
}
