package theme

import "github.com/charmbracelet/lipgloss"

// Color palette inspired by Claude Code
var (
	// Primary colors
	Purple = lipgloss.Color("#A855F7")

	// Neutrals
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")

	// Semantic colors
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
)
