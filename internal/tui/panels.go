package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/view"
)

// screenLayout holds computed dimensions shared by rendering and mouse
// hit-testing.
type screenLayout struct {
	width         int
	contentTop    int // first content row (below header and a spacer)
	contentHeight int

	// Focal card geometry, in screen cells.
	cardLeft   int
	cardTop    int
	cardWidth  int // width passed to the card style (content plus padding)
	titleRow   int
	titleLeft  int
	titleWidth int
	boxLeft    int
}

func computeLayout(width, height int) screenLayout {
	l := screenLayout{
		width:         width,
		contentTop:    2,
		contentHeight: max(height-3, 1),
	}

	l.cardWidth = min(width-6, 72)
	if l.cardWidth < 20 {
		l.cardWidth = max(width-2, 8)
	}
	outer := l.cardWidth + 2
	l.cardLeft = max((width-outer)/2, 0)
	l.cardTop = l.contentTop + 1

	// border + vertical padding
	l.titleRow = l.cardTop + 2
	// border + horizontal padding
	l.boxLeft = l.cardLeft + 3
	l.titleLeft = l.boxLeft + 4
	l.titleWidth = max(l.cardWidth-4-4, 1)
	return l
}

// cardOptions controls how the focal card is drawn.
type cardOptions struct {
	emptyState bool
	editor     string
}

// renderCard draws the focal task, or the empty-state hint when there is
// none.
func renderCard(top models.Task, hasTop bool, l screenLayout, o cardOptions) string {
	var body string
	switch {
	case !hasTop:
		body = placeholderStyle.Render(view.PlaceholderText(true))
	default:
		box := checkboxStyle.Render("[ ]")
		if top.Done {
			box = checkedStyle.Render("[✓]")
		}
		var title string
		switch {
		case o.editor != "":
			title = o.editor
		case view.IsBlank(top):
			title = placeholderStyle.Render(ansi.Truncate(view.PlaceholderText(o.emptyState), l.titleWidth, "…"))
		default:
			title = cardTitleStyle.Render(ansi.Truncate(top.Title, l.titleWidth, "…"))
		}
		body = box + " " + title
	}

	style := cardStyle
	if o.editor != "" {
		style = cardEditingStyle
	}
	card := style.Width(l.cardWidth).Render(body)

	indent := strings.Repeat(" ", l.cardLeft)
	lines := strings.Split(card, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return "\n" + strings.Join(lines, "\n")
}

func renderMainHints(l screenLayout) string {
	hints := keyHint("n", "new") + "  " + keyHint("d", "done") + "  " +
		keyHint("x", "delete") + "  " + hintStyle.Render("click the title to edit")
	return lipgloss.PlaceHorizontal(l.width, lipgloss.Center, hints)
}
