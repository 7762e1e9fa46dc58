package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
)

// createWriter creates the appropriate sink based on configuration.
// The returned closer is nil for process streams.
func createWriter(config *types.LoggerConfig) (zapcore.WriteSyncer, io.Closer) {
	var ws zapcore.WriteSyncer
	var closer io.Closer

	switch config.Output {
	case "stderr":
		ws = zapcore.Lock(os.Stderr)
	case "file":
		// Create directory if it doesn't exist
		dir := filepath.Dir(config.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: Failed to create log directory %s: %v", dir, err)
			ws = zapcore.Lock(os.Stdout)
			break
		}

		rotator := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		ws = zapcore.AddSync(rotator)
		closer = rotator
	case "null":
		ws = zapcore.AddSync(io.Discard)
	default:
		ws = zapcore.Lock(os.Stdout)
	}

	if config.Async {
		buffered := &zapcore.BufferedWriteSyncer{WS: ws, Size: config.BufferSize * 1024}
		inner := closer
		closer = closerFunc(func() error {
			err := buffered.Stop()
			if inner != nil {
				if cerr := inner.Close(); err == nil {
					err = cerr
				}
			}
			return err
		})
		ws = buffered
	}

	return ws, closer
}

// NewNop creates a logger that discards all output (useful for testing)
func NewNop() *ZapLogger {
	config := DefaultConfig()
	config.Output = "null"
	return newWithSyncer(config, zapcore.AddSync(io.Discard), nil)
}
