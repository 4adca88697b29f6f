package app

import (
	"io"
	"log/slog"
)

// parseLevel maps a configured level name onto slog. Unknown names log at info.
func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newLogger builds an isolated logger writing to w. It never touches
// slog.Default; cmd/lidarcore decides what the process-wide logger is.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "lidarcore"))
}
