// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// Styles renders report fragments with one lipgloss renderer.
type Styles struct {
	Title   lipgloss.Style
	Command lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds the report styles for renderer r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Foreground(Red).Bold(true),
		Command: r.NewStyle().Foreground(Slate),
		Label:   r.NewStyle().Foreground(Iris).Bold(true),
		Success: r.NewStyle().Foreground(Green),
		Muted:   r.NewStyle().Foreground(Slate).Faint(true),
	}
}
