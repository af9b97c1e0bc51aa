package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// defaultLogger already skips the package helpers when reporting callers
var defaultLogger *zap.Logger

// Initialize builds the process logger. The fields are attached to every entry.
func Initialize(level string, isDebug bool, fields ...zap.Field) error {
	logger, err := New(level, isDebug)
	if err != nil {
		return err
	}

	UseLogger(logger.With(fields...))
	return nil
}

func New(level string, isDebug bool) (*zap.Logger, error) {
	var config zap.Config

	if isDebug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	return config.Build()
}

// parseLevel falls back to error level for unknown values
func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "TRACE", "DEBUG":
		return zap.DebugLevel
	case "INFO":
		return zap.InfoLevel
	case "WARN":
		return zap.WarnLevel
	}
	return zap.ErrorLevel
}

// UseLogger replaces the process logger. Tests use it with an observer or zap.NewNop.
func UseLogger(logger *zap.Logger) {
	if logger == nil {
		defaultLogger = nil
		return
	}

	defaultLogger = logger.WithOptions(zap.AddCallerSkip(1))
}

func mustDefaultLogger() *zap.Logger {
	if defaultLogger == nil {
		panic("use image host logger without initializing")
	}

	return defaultLogger
}

func Debug(msg string, fields ...zap.Field) {
	mustDefaultLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	mustDefaultLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	mustDefaultLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	mustDefaultLogger().Error(msg, fields...)
}

// Panic logs and then panics, main uses it for startup failures
func Panic(msg string, fields ...zap.Field) {
	mustDefaultLogger().Panic(msg, fields...)
}

// cloudflareLogger forwards cloudflare-go debug output to zap
type cloudflareLogger struct {
	logger *zap.Logger
}

func (l cloudflareLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), SourceCloudflare)
}

// CloudflareLogger returns a logger which satisfies the cloudflare.Logger interface
func CloudflareLogger() cloudflareLogger {
	return cloudflareLogger{logger: mustDefaultLogger()}
}
