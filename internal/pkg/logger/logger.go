package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

var globalLogger *slog.Logger

// Init builds the process zap logger for level and format ("console" or
// "json") and installs a slog handler backed by it as the default logger.
func Init(level, format string) (*zap.Logger, error) {
	zapLevel, levelErr := zapcore.ParseLevel(strings.ToLower(level))
	if levelErr != nil {
		zapLevel = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if strings.EqualFold(format, "json") {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zapLogger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	SetZap(zapLogger)
	if levelErr != nil {
		Warn("Invalid log level string, defaulting to INFO", "input", level)
	}
	return zapLogger, nil
}

// SetZap routes the global slog logger to zapLogger.
func SetZap(zapLogger *zap.Logger) {
	handler := zapslog.NewHandler(zapLogger.Core(), zapslog.WithCaller(false))
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func ensureInitialized() {
	if globalLogger == nil {
		globalLogger = slog.Default()
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelDebug) {
		globalLogger.Debug(msg, args...)
	}
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
}

// Fatal logs at ErrorLevel and exits.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	os.Exit(1)
}
