package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide structured logger. It is a no-op until
// InitLogging runs, so packages may log safely during early startup.
var Logger = zap.NewNop()

// LogWriter receives the same stream as Logger, for libraries that expect a
// plain io.Writer (GORM's SQL logger).
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "gbp-api.log")
}

// InitLogging opens the log file and builds the zap logger, teeing every
// entry to stdout and the file. The caller owns the returned file handle.
func InitLogging() *os.File {
	if err := os.MkdirAll(filepath.Dir(LogFilePath()), os.ModePerm); err != nil {
		Logger = newLogger(zapcore.AddSync(os.Stdout))
		Logger.Warn("failed to create logs directory", zap.Error(err))
		return nil
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Logger = newLogger(zapcore.AddSync(os.Stdout))
		Logger.Warn("failed to open log file", zap.Error(err))
		return nil
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	Logger = newLogger(zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(logFile)))
	return logFile
}

func newLogger(sink zapcore.WriteSyncer) *zap.Logger {
	production := strings.ToLower(os.Getenv("ENVIRONMENT")) == "production"

	var encoder zapcore.Encoder
	level := zapcore.DebugLevel
	if production {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
		level = zapcore.InfoLevel
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	return zap.New(zapcore.NewCore(encoder, sink, level), zap.AddCaller())
}
