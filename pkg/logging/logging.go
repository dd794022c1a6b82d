// Package logging configures structured logging for the server and splitctl.
// Terminals get colored output from tint; anything else, or format "json",
// gets one JSON object per line.
//
// Usage:
//
//	logging.Setup("console", "info")         // from config
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level, console format
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (read by internal/config)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup configures the default logger with the given format ("console" or
// "json") and level name.
func Setup(format, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(NewHandler(os.Stderr, format, lvl)))
	return nil
}

// SetupWithLevel configures console logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, "console", level)))
}

// NewHandler returns a tint handler when format is "console" and w is a
// terminal, and a JSON handler otherwise.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if format != "json" && isTerminal(w) {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// ParseLevel accepts debug, info, warn, or error, case-insensitively. An
// empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
