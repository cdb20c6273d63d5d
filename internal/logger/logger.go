package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger

// Init configures the process-wide logger. DEBUG=true lowers the level,
// LOG_FORMAT=json switches to JSON output for hosted environments.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func l() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

func Info(msg string, args ...any) {
	l().Info(msg, args...)
}

func Error(msg string, args ...any) {
	l().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	l().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	l().Warn(msg, args...)
}
