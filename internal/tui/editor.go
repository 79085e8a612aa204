package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/x/ansi"
)

// newTitleInput returns the single-line field used to edit a title in place.
func newTitleInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.PlaceholderStyle = placeholderStyle
	ti.TextStyle = cardTitleStyle
	return ti
}

// offsetAtColumn maps a display column, relative to the start of text, to the
// nearest rune boundary. Columns past the end land after the last rune.
func offsetAtColumn(text string, col int) int {
	if col <= 0 || text == "" {
		return 0
	}
	acc, i := 0, 0
	for _, r := range text {
		w := ansi.StringWidth(string(r))
		if col < acc+(w+1)/2 {
			return i
		}
		acc += w
		i++
		if col < acc {
			return i
		}
	}
	return i
}

// titleEditor tracks the field that currently edits a title.
type titleEditor struct {
	input textinput.Model
	id    string
}

func newTitleEditor() titleEditor {
	return titleEditor{input: newTitleInput()}
}

// open loads text and places the caret, counted in runes.
func (e *titleEditor) open(id, text string, offset int, width int) {
	e.id = id
	e.input.SetValue(text)
	e.input.Width = max(width, 1)
	e.input.SetCursor(offset)
	e.input.Focus()
}

func (e *titleEditor) close() string {
	text := e.input.Value()
	e.id = ""
	e.input.Blur()
	e.input.SetValue("")
	return text
}

func (e *titleEditor) active() bool { return e.id != "" }
