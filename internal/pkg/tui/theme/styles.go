package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains the styles used for command output
type Styles struct {
	// Text styles
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Muted lipgloss.Style

	// Status indicators
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		// Text styles
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Purple),

		Label: lipgloss.NewStyle().
			Foreground(LightGray).
			Width(18),

		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		// Status indicators
		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),
	}
}

// Row renders a "label value" line.
func (s *Styles) Row(label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value)
}
