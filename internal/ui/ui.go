// Package ui prints colored diagnostics for odootable. Everything goes
// to stderr so the filtered document on stdout stays intact.
package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/muesli/termenv"
)

// ColorMode selects when diagnostics are colored.
type ColorMode int

const (
	// ColorAuto colors output when stderr is a capable terminal.
	ColorAuto ColorMode = iota
	// ColorAlways colors output unconditionally.
	ColorAlways
	// ColorNever disables color.
	ColorNever
)

type contextKey string

const uiContextKey contextKey = "ui"

// UI writes status lines to stderr with an optional color profile.
type UI struct {
	out *termenv.Output
}

// New builds a UI for the given mode. The NO_COLOR environment variable
// overrides the mode and disables color.
func New(mode ColorMode) *UI {
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}

	profile := termenv.ColorProfile()
	switch mode {
	case ColorNever:
		profile = termenv.Ascii
	case ColorAlways:
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	}

	return &UI{out: termenv.NewOutput(os.Stderr, termenv.WithProfile(profile))}
}

// WithUI attaches a UI to the context.
func WithUI(ctx context.Context, ui *UI) context.Context {
	return context.WithValue(ctx, uiContextKey, ui)
}

// FromContext returns the UI attached to the context, or a fresh
// ColorAuto one when none is attached.
func FromContext(ctx context.Context) *UI {
	if ui, ok := ctx.Value(uiContextKey).(*UI); ok {
		return ui
	}
	return New(ColorAuto)
}

// Success prints a green status line.
func (u *UI) Success(format string, args ...any) {
	u.line(termenv.ANSIGreen, "✓ ", format, args...)
}

// Warning prints a yellow status line.
func (u *UI) Warning(format string, args ...any) {
	u.line(termenv.ANSIYellow, "⚠ ", format, args...)
}

// Error prints a red status line.
func (u *UI) Error(format string, args ...any) {
	u.line(termenv.ANSIRed, "✗ ", format, args...)
}

func (u *UI) line(color termenv.ANSIColor, mark, format string, args ...any) {
	msg := mark + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(color))
}
