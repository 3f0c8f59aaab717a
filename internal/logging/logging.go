// Package logging configures the global slog logger the filter's warning
// paths write to.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup configures the global slog logger with text output on w (stderr
// when nil). Warnings always pass; debug records only when debug is true.
// Logs go to stderr so a filtered document on stdout stays clean.
func Setup(debug bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
