// Package output provides utilities for creating termenv.Output and lipgloss
// renderers with consistent color profile handling across the CLI.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorProfile returns Ascii when NO_COLOR is set and the detected terminal profile otherwise.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a termenv.Output writing to w, or to stderr when w is nil.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}

// Renderer creates a lipgloss renderer for w sharing the profile logic of New.
func Renderer(w io.Writer) *lipgloss.Renderer {
	if w == nil {
		w = os.Stderr
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(ColorProfile())
	return r
}
