package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Global",
		keys: []helpKey{
			{"Ctrl+q", "Quit"},
			{"Ctrl+h", "Toggle help"},
			{"1/2/3 ←/→", "Main, List, Done view"},
			{"n / Enter", "New todo on top of the stack"},
			{"d / Delete", "Mark the top todo done"},
			{"x / Shift+Del", "Delete top todo (latest done on Done view)"},
		},
	},
	{
		title: "List and Done",
		keys: []helpKey{
			{"j/k ↑/↓", "Select"},
			{"K/J Shift+↑/↓", "Move selected todo"},
			{"Space", "Toggle done"},
			{"r", "Rename selected"},
			{"drag ≡", "Reorder with the mouse"},
		},
	},
	{
		title: "Editing",
		keys: []helpKey{
			{"click", "Edit title at the clicked position"},
			{"Enter / Esc", "Save title"},
		},
	},
	{
		title: "Stack",
		keys: []helpKey{
			{"i", "Import JSON"},
			{"e", "Export JSON (Ctrl+s copies)"},
			{"C", "Clear the entire stack"},
		},
	},
}

// renderHelp renders the help overlay content.
func renderHelp(width int) string {
	maxWidth := 64
	if width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	title := overlayTitleStyle.Render("Keyboard Shortcuts")
	sections := make([]string, 0, len(helpSections)*4+3)
	sections = append(sections, title)

	for _, sec := range helpSections {
		header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(sec.title)
		sections = append(sections, "", header)

		for _, k := range sec.keys {
			keyCol := lipgloss.NewStyle().
				Width(16).
				Foreground(colorWhite).
				Bold(true).
				Render(k.key)
			descCol := lipgloss.NewStyle().
				Foreground(colorDim).
				Render(k.desc)
			sections = append(sections, "  "+keyCol+descCol)
		}
	}

	sections = append(sections, "", lipgloss.NewStyle().Foreground(colorDim).Render("Press Esc or Ctrl+h to close"))

	content := strings.Join(sections, "\n")
	return overlayStyle.Width(maxWidth).Render(content)
}
