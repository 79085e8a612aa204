package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active outside text fields.
type GlobalKeys struct {
	Quit key.Binding
	Help key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q", "ctrl+c"),
		key.WithHelp("Ctrl+q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("Ctrl+h", "help"),
	),
}

// ViewKeys switch screens.
type ViewKeys struct {
	Main  key.Binding
	List  key.Binding
	Done  key.Binding
	Left  key.Binding
	Right key.Binding
}

var viewKeys = ViewKeys{
	Main: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "Main"),
	),
	List: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "List"),
	),
	Done: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "Done"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
	),
}

// StackKeys act on the stack from any screen.
type StackKeys struct {
	Add      key.Binding
	Complete key.Binding
	Delete   key.Binding
	Edit     key.Binding
	Import   key.Binding
	Export   key.Binding
	Clear    key.Binding
}

var stackKeys = StackKeys{
	Add: key.NewBinding(
		key.WithKeys("n", "N", "enter"),
		key.WithHelp("n", "new"),
	),
	Complete: key.NewBinding(
		key.WithKeys("d", "D", "delete"),
		key.WithHelp("d", "done"),
	),
	Delete: key.NewBinding(
		key.WithKeys("shift+delete", "x"),
		key.WithHelp("x", "delete"),
	),
	Edit: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Import: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Clear: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear all"),
	),
}

// ListKeys are active on the list and done screens.
type ListKeys struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Toggle   key.Binding
}

var listKeys = ListKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("shift+up", "K"),
		key.WithHelp("K/J", "move"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("shift+down", "J"),
		key.WithHelp("K/J", "move"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("Space", "toggle done"),
	),
}

// EditKeys end a title edit. Anything else goes to the text field.
type EditKeys struct {
	Commit key.Binding
}

var editKeys = EditKeys{
	Commit: key.NewBinding(
		key.WithKeys("enter", "esc", "tab"),
		key.WithHelp("Enter/Esc", "save title"),
	),
}

// OverlayKeys are active when the import/export modal is shown.
type OverlayKeys struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var overlayKeys = OverlayKeys{
	Confirm: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "close"),
	),
}

// ConfirmKeys for inline confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}
