// Package logging configures the global slog logger for clipstash binaries.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Options controls how the global logger is built.
type Options struct {
	// Format is one of "auto", "text" (tinter) or "json". Auto picks text on
	// a terminal and JSON otherwise.
	Format string
	// Level is a slog level name. Empty falls back to Default.
	Level string
	// Default is used when Level is empty: CLI commands run at info, the
	// daemon run interactively at debug.
	Default slog.Level
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Setup installs the global slog logger. Call once after flag/viper parsing.
func Setup(opts Options) {
	w := os.Stderr
	level := parseLevel(opts.Level, opts.Default)

	useTint := false
	switch strings.ToLower(opts.Format) {
	case "text", "tint", "human":
		useTint = true
	case "json":
	default: // auto
		useTint = IsTTY(w)
	}

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	if s == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return l
}
