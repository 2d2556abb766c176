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
	Arrow   = "→"
)

// Palette holds the text styles used by command output, bound to the
// renderer of the writer they are printed to.
type Palette struct {
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
}

// NewPalette creates a Palette rendering through r.
func NewPalette(r *lipgloss.Renderer) Palette {
	return Palette{
		Heading: r.NewStyle().Bold(true).Foreground(Iris),
		Muted:   r.NewStyle().Foreground(Slate),
		Success: r.NewStyle().Foreground(Green),
		Failure: r.NewStyle().Foreground(Red),
	}
}
