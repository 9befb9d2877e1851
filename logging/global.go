package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/interactions-api/config"
)

// LoggingService owns the process logger and the file sink behind it
type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

// Options configures InitLogger
type Options struct {
	Dir            string
	Level          slog.Level
	RetentionWeeks int
	MaxFileSize    int64
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance and makes it the slog default
func InitLogger(opts Options) {
	logger, rotating := SetupLogger(opts)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(logger)
}

// Close flushes and closes the file sink, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.rotating == nil {
		return nil
	}
	return DefaultLoggingService.rotating.Close()
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values yield info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel derives the logger level from ENV and LOG_LEVEL. An
// explicit LOG_LEVEL wins, except under test where output stays quiet.
func GetConsoleLogLevel(env config.Environment, logLevel string) slog.Level {
	if env == config.EnvTest {
		return slog.LevelError
	}
	if logLevel != "" {
		return ParseLevel(logLevel)
	}
	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

func current(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	current(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current(slog.LevelDebug).Debug(msg, args...)
}
