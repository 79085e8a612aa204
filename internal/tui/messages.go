package tui

import (
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/watcher"
)

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// ClearSavedMsg clears the transient notice.
type ClearSavedMsg struct{}

// CopiedMsg reports the export was placed on the clipboard.
type CopiedMsg struct{}

// FileChangedMsg carries a watcher event.
type FileChangedMsg struct {
	Event watcher.Event
}

// SettingsLoadedMsg carries settings re-read after an external edit.
type SettingsLoadedMsg struct {
	Settings *models.Settings
}
