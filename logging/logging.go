package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/skekre98/drmgr/config"
)

// New builds the process logger from the log settings. Text is the default;
// "json" switches to the JSON handler.
func New(w io.Writer, s config.LogSettings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(s.Level)}
	var h slog.Handler
	if strings.EqualFold(s.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level, falling back to info.
func ParseLevel(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}
