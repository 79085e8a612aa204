package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/topstack/topstack/internal/engine"
	"github.com/topstack/topstack/internal/view"
)

const (
	headerBrand  = " ● topstack  "
	tabSeparator = " | "
)

var tabTitles = map[view.Name]string{
	view.Main: "Main",
	view.List: "List",
	view.Done: "Done",
}

func renderHeader(frame engine.Frame, width int) string {
	dot := lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("topstack")
	left := " " + dot + " " + name + "  " + renderTabs(frame.View)

	counts := fmt.Sprintf("%d active · %d done ", len(frame.Stack.Active), len(frame.Stack.Done))
	right := hintStyle.Render(counts)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderTabs(active view.Name) string {
	parts := make([]string, 0, len(view.Names))
	for _, n := range view.Names {
		if n == active {
			parts = append(parts, activeTabStyle.Render(tabTitles[n]))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tabTitles[n]))
		}
	}
	return strings.Join(parts, tabSepStyle.Render(tabSeparator))
}

// tabAt maps a header column to the tab drawn there.
func tabAt(x int) (view.Name, bool) {
	col := lipgloss.Width(headerBrand)
	for _, n := range view.Names {
		w := lipgloss.Width(tabTitles[n])
		if x >= col && x < col+w {
			return n, true
		}
		col += w + lipgloss.Width(tabSeparator)
	}
	return "", false
}
