package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/topstack/topstack/internal/config"
)

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrorMsg{Err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return CopiedMsg{}
	}
}

func loadSettingsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		settings, err := config.LoadSettingsFile(path)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("reload settings: %w", err)}
		}
		return SettingsLoadedMsg{Settings: settings}
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func clearSavedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearSavedMsg{}
	})
}
