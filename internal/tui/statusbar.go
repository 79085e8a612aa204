package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/topstack/topstack/internal/view"
)

// confirmMode values.
const (
	confirmNone    = 0
	confirmDelete  = 1
	confirmReplace = 2
)

func renderStatusBar(m *Model, width int) string {
	switch m.confirmMode {
	case confirmDelete:
		return renderConfirmBar("Delete this todo? (y/n)", width)
	case confirmReplace:
		if m.pending != nil {
			return renderConfirmBar(m.pending.Prompt()+" (y/n)", width)
		}
	}

	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	if m.notice != "" {
		return renderSavedBar(m.notice, width)
	}

	left := " " + getKeyHints(m)

	right := ""
	if m.frame.SaveErr != nil {
		right = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Not saved") + " "
	}

	left = ansi.Truncate(left, max(width-lipgloss.Width(right)-1, 0), "…")
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	switch {
	case m.activeOverlay == overlayImport:
		return keyHint("Ctrl+s", "import") + "  " + keyHint("Esc", "cancel")
	case m.activeOverlay == overlayExport:
		return keyHint("Ctrl+s", "copy") + "  " + keyHint("Esc", "close")
	case m.activeOverlay == overlayHelp:
		return keyHint("Esc", "close help")
	case m.editor.active():
		return keyHint("Enter/Esc", "save title")
	}

	base := keyHint("Ctrl+q", "quit") + "  " + keyHint("Ctrl+h", "help") + "  " + keyHint("1/2/3", "views")
	switch m.frame.View {
	case view.List:
		return base + "  " + keyHint("j/k", "select") + "  " + keyHint("K/J", "move") + "  " +
			keyHint("Space", "done") + "  " + keyHint("r", "rename") + "  " + keyHint("x", "delete")
	case view.Done:
		return base + "  " + keyHint("j/k", "select") + "  " + keyHint("Space", "undo") + "  " +
			keyHint("x", "delete")
	default:
		return base + "  " + keyHint("n", "new") + "  " + keyHint("d", "done") + "  " +
			keyHint("i/e", "import/export")
	}
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}

func renderSavedBar(msg string, width int) string {
	return statusBarStyle.
		Width(width).
		Render(" " + lipgloss.NewStyle().Foreground(colorGreen).Render(msg))
}
