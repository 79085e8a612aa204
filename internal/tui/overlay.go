package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay constants.
const (
	overlayNone   = 0
	overlayHelp   = 1
	overlayImport = 2
	overlayExport = 3
)

// renderOverlay renders an overlay centered on top of the base view.
func renderOverlay(base, overlayContent string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range baseLines {
		baseLines[i] = overlayDimStyle.Render(ansi.Strip(line))
	}

	overlayLines := strings.Split(overlayContent, "\n")
	overlayWidth := 0
	for _, l := range overlayLines {
		if w := lipgloss.Width(l); w > overlayWidth {
			overlayWidth = w
		}
	}

	top := max((height-len(overlayLines))/2, 1)
	left := max((width-overlayWidth)/2, 1)

	// Splice each overlay row into the dimmed background, ANSI-aware.
	for i, line := range overlayLines {
		row := top + i
		if row >= len(baseLines) {
			continue
		}
		bg := baseLines[row]
		bgWidth := lipgloss.Width(bg)

		leftPart := ansi.Truncate(bg, left, "")
		if pad := left - lipgloss.Width(leftPart); pad > 0 {
			leftPart += strings.Repeat(" ", pad)
		}

		rightPart := ""
		if rightStart := left + lipgloss.Width(line); rightStart < bgWidth {
			rightPart = ansi.Cut(bg, rightStart, bgWidth)
		}

		baseLines[row] = leftPart + "\033[0m" + line + "\033[0m" + rightPart
	}

	return strings.Join(baseLines, "\n")
}
