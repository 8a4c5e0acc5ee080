package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Default logger instance
	defaultLogger *zap.Logger
)

// Init builds the default logger. Logs go to stderr so they never mix with
// the progress lines printed on stdout.
func Init(debug bool) error {
	config := zap.NewDevelopmentConfig()

	level := zap.WarnLevel
	if debug || strings.EqualFold(os.Getenv("CIRRUS_LOG_LEVEL"), "debug") {
		level = zap.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := config.Build()
	if err != nil {
		return err
	}

	defaultLogger = logger
	zap.ReplaceGlobals(defaultLogger)
	return nil
}

// Logger returns the default logger instance
func Logger() *zap.Logger {
	if defaultLogger == nil {
		return zap.NewNop()
	}
	return defaultLogger
}

// Sync flushes any buffered log entries
func Sync() {
	if defaultLogger != nil {
		// stderr sync fails with EINVAL on some platforms; nothing to do about it
		_ = defaultLogger.Sync()
	}
}
