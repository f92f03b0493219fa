// Package logging configures the process-wide structured logger.
//
// Logging is off unless explicitly requested. Set PICOTEL_LOG to a
// level name (debug, info, warn, error) to enable output on stderr,
// and PICOTEL_LOG_FORMAT=json to switch from text to JSON records.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Environment variables consulted by Init.
const (
	EnvFilter = "PICOTEL_LOG"
	EnvFormat = "PICOTEL_LOG_FORMAT"
)

// Init builds a logger from the environment and installs it as the
// slog default. It returns the logger it installed.
func Init() *slog.Logger {
	logger := New(os.Getenv(EnvFilter), os.Getenv(EnvFormat))
	slog.SetDefault(logger)
	return logger
}

// New builds a logger for the given filter and format without
// touching the process default. An empty, "off", or unrecognized
// filter yields a logger that discards everything.
func New(filter, format string) *slog.Logger {
	level, ok := parseLevel(filter)
	if !ok {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

func parseLevel(filter string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		// Absent, "off", and anything unrecognized all disable output.
		return 0, false
	}
}
