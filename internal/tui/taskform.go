package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"
)

// SnapshotForm is the import/export overlay: a JSON text area plus an inline
// validation message.
type SnapshotForm struct {
	mode  int // overlayImport or overlayExport
	area  textarea.Model
	err   string
	width int
}

// NewSnapshotForm creates the overlay. Export mode is pre-filled with text.
func NewSnapshotForm(mode int, text string, width, height int) *SnapshotForm {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(max(width-8, 20))
	ta.SetHeight(max(height, 3))
	if mode == overlayImport {
		ta.Placeholder = `Paste an exported stack, e.g. [{"id":"…","title":"…","createdAt":"…"}]`
	}
	ta.SetValue(text)
	ta.Focus()

	return &SnapshotForm{mode: mode, area: ta, width: width}
}

// Area returns the textarea for update forwarding.
func (f *SnapshotForm) Area() *textarea.Model {
	return &f.area
}

// Value returns the current text.
func (f *SnapshotForm) Value() string {
	return f.area.Value()
}

// SetError shows msg under the text area; empty clears it.
func (f *SnapshotForm) SetError(msg string) {
	f.err = msg
}

// View renders the form.
func (f *SnapshotForm) View() string {
	title := "Import JSON"
	footer := "Ctrl+s import  |  Esc cancel"
	if f.mode == overlayExport {
		title = "Export JSON"
		footer = "Ctrl+s copy to clipboard  |  Esc close"
	}

	formWidth := min(max(f.width, 30), 90)

	parts := make([]string, 0, 6)
	parts = append(parts, overlayTitleStyle.Render(title), f.area.View(), "")
	if f.err != "" {
		parts = append(parts, overlayErrorStyle.Render(f.err), "")
	}
	parts = append(parts, lipgloss.NewStyle().Foreground(colorDim).Render(footer))

	return overlayStyle.Width(formWidth).Render(strings.Join(parts, "\n"))
}
