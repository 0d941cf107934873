package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the application's own logger. The global default is left
// alone so several apps can run side by side in tests. Unknown levels fall
// back to info; debug also records the source position.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(levelStr))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var h slog.Handler
	switch formatStr {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", "gpp")
}
