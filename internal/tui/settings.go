package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/topstack/topstack/internal/models"
)

// detectedDark is the terminal background lipgloss detects on first use,
// restored when the theme is "system".
var detectedDark = sync.OnceValue(lipgloss.HasDarkBackground)

// applyAppearance makes appearance settings take effect on the next render.
func applyAppearance(a models.AppearanceConfig) {
	system := detectedDark()
	switch a.Theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(system)
	}
}
