package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topstack/topstack/internal/engine"
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/storage"
	"github.com/topstack/topstack/internal/view"
	"github.com/topstack/topstack/internal/watcher"
)

const (
	testWidth  = 80
	testHeight = 24
)

type testApp struct {
	m    Model
	slot *storage.MemorySlot
}

func newTestApp(t *testing.T, stored string, settings *models.Settings) *testApp {
	t.Helper()
	slot := storage.NewMemorySlot()
	if stored != "" {
		require.NoError(t, slot.Set(models.DefaultStorageKey, []byte(stored)))
	}
	n := 0
	eng, err := engine.New(storage.NewAdapter(slot, "", nil),
		engine.WithClock(func() time.Time { return time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC) }),
		engine.WithIDs(func() string { n++; return fmt.Sprintf("t%d", n) }),
	)
	require.NoError(t, err)
	app := &testApp{m: NewModel(eng, settings, "", nil, nil), slot: slot}
	app.send(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	return app
}

func (a *testApp) send(msg tea.Msg) tea.Cmd {
	next, cmd := a.m.Update(msg)
	a.m = next.(Model)
	return cmd
}

func (a *testApp) press(keys ...string) {
	for _, k := range keys {
		a.send(keyMsg(k))
	}
}

func (a *testApp) click(x, y int) {
	a.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func (a *testApp) titles() []string {
	out := []string{}
	for _, t := range a.m.engine.Tasks() {
		out = append(out, t.Title)
	}
	return out
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

const threeTasks = `[
 {"id":"A","title":"Buy milk","createdAt":"2025-01-01T00:00:00.000Z","done":false,"doneAt":null},
 {"id":"B","title":"B","createdAt":"2025-01-01T00:00:00.000Z","done":false,"doneAt":null},
 {"id":"C","title":"C","createdAt":"2025-01-01T00:00:00.000Z","done":false,"doneAt":null}
]`

func TestEmptyStartOpensPlaceholderEditor(t *testing.T) {
	app := newTestApp(t, "", nil)

	require.True(t, app.m.editor.active())
	assert.Equal(t, "t1", app.m.editor.id)

	app.press("Walk dog", "enter")
	assert.False(t, app.m.editor.active())
	assert.Equal(t, []string{"Walk dog"}, app.titles())
}

func TestAddKeyOpensNewTaskForEditing(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	require.False(t, app.m.editor.active())

	app.press("n")
	require.True(t, app.m.editor.active())
	app.press("Call mom", "esc")

	assert.Equal(t, []string{"Call mom", "Buy milk", "B", "C"}, app.titles())
}

func TestTitleClickPlacesCaret(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	l := computeLayout(testWidth, testHeight)

	app.click(l.titleLeft+3, l.titleRow)
	require.True(t, app.m.editor.active())
	assert.Equal(t, "A", app.m.editor.id)
	assert.Equal(t, 3, app.m.editor.input.Position())

	// A later refresh must not move the caret back to the end.
	app.send(FileChangedMsg{Event: watcher.Event{Type: watcher.EventStackChanged}})
	app.press("X")
	assert.Equal(t, 4, app.m.editor.input.Position())

	// Clicking again inside the field only moves the caret.
	app.click(l.titleLeft, l.titleRow)
	assert.Equal(t, 0, app.m.editor.input.Position())

	app.press("enter")
	assert.Equal(t, "BuyX milk", app.titles()[0])
}

func TestLongTitleSurvivesEditing(t *testing.T) {
	long := strings.Repeat("ab", 300)
	app := newTestApp(t, `[{"id":"A","title":"`+long+`","createdAt":"2025-01-01T00:00:00.000Z","done":false}]`, nil)
	l := computeLayout(testWidth, testHeight)

	app.click(l.titleLeft+1, l.titleRow)
	require.True(t, app.m.editor.active())
	assert.Equal(t, long, app.m.editor.input.Value())

	app.press("enter")
	assert.Equal(t, []string{long}, app.titles())
}

func TestEditorShowsPlaceholderHint(t *testing.T) {
	app := newTestApp(t, "", nil)
	require.True(t, app.m.editor.active())
	assert.Contains(t, app.m.View(), "empty here")

	app.press("Buy milk", "enter", "n")
	require.True(t, app.m.editor.active())
	out := app.m.View()
	assert.Contains(t, out, "do you want to do?")
	assert.NotContains(t, out, "empty here")
}

func TestCardCheckboxCompletesTop(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	l := computeLayout(testWidth, testHeight)

	app.click(l.boxLeft+1, l.titleRow)
	assert.Equal(t, "B", app.m.frame.Stack.Top.ID)
	require.Len(t, app.m.frame.Stack.Done, 1)
	assert.Equal(t, "A", app.m.frame.Stack.Done[0].ID)
}

func TestHeaderClickSwitchesView(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)

	x := lipgloss.Width(headerBrand) + lipgloss.Width(tabTitles[view.Main]) + lipgloss.Width(tabSeparator)
	app.click(x, 0)
	assert.Equal(t, view.List, app.m.frame.View)

	app.press("3")
	assert.Equal(t, view.Done, app.m.frame.View)
	app.press("l")
	assert.Equal(t, view.Main, app.m.frame.View)
}

func TestDragReordersActiveList(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	app.press("2")
	top := computeLayout(testWidth, testHeight).contentTop

	app.send(tea.MouseMsg{X: 0, Y: top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, app.m.activeList.Dragging())
	app.send(tea.MouseMsg{X: 0, Y: top + 2, Action: tea.MouseActionMotion})
	app.send(tea.MouseMsg{X: 0, Y: top + 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	assert.Equal(t, []string{"B", "C", "Buy milk"}, app.titles())
	assert.Equal(t, 2, app.m.activeList.Cursor())
}

func TestListKeys(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	app.press("2", "j", "J")
	assert.Equal(t, []string{"Buy milk", "C", "B"}, app.titles())
	assert.Equal(t, 2, app.m.activeList.Cursor())

	app.press(" ")
	require.Len(t, app.m.frame.Stack.Done, 1)
	assert.Equal(t, "B", app.m.frame.Stack.Done[0].ID)
}

func TestListCheckboxAndDelete(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	app.press("2")
	top := computeLayout(testWidth, testHeight).contentTop

	app.click(checkboxCol+1, top+1)
	require.Len(t, app.m.frame.Stack.Done, 1)
	assert.Equal(t, "B", app.m.frame.Stack.Done[0].ID)

	app.click(testWidth-2, top)
	assert.Equal(t, []string{"B", "C"}, app.titles())
}

func TestConfirmDelete(t *testing.T) {
	settings := models.NewSettings()
	settings.Appearance.ConfirmDelete = true
	app := newTestApp(t, threeTasks, settings)

	app.press("x")
	require.Equal(t, confirmDelete, app.m.confirmMode)
	app.press("n")
	assert.Len(t, app.titles(), 3)

	app.press("x", "y")
	assert.Equal(t, []string{"B", "C"}, app.titles())
}

func TestImportFlow(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)

	app.press("i")
	require.Equal(t, overlayImport, app.m.activeOverlay)

	app.m.form.Area().SetValue(`{}`)
	app.press("ctrl+s")
	assert.Equal(t, confirmNone, app.m.confirmMode)
	assert.NotEmpty(t, app.m.form.err)

	app.m.form.Area().SetValue(`[{"id":"Z","title":"Imported","createdAt":"2025-01-01T00:00:00.000Z","done":false}]`)
	app.press("ctrl+s")
	require.Equal(t, confirmReplace, app.m.confirmMode)
	assert.Len(t, app.titles(), 3, "nothing changes before confirmation")

	app.press("y")
	assert.Equal(t, []string{"Imported"}, app.titles())
	assert.Equal(t, overlayNone, app.m.activeOverlay)
	assert.Contains(t, app.m.notice, "Imported 1")
}

func TestClearCanBeCancelled(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)

	app.press("C")
	require.Equal(t, confirmReplace, app.m.confirmMode)
	app.press("esc")
	assert.Equal(t, confirmNone, app.m.confirmMode)
	assert.Len(t, app.titles(), 3)

	app.press("C", "y")
	require.Len(t, app.titles(), 1)
	assert.True(t, app.m.frame.Stack.Placeholder)
	assert.True(t, app.m.editor.active(), "the placeholder opens for editing")
}

func TestExportOverlayShowsJSON(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)

	app.press("e")
	require.Equal(t, overlayExport, app.m.activeOverlay)
	assert.Contains(t, app.m.form.Value(), `"title": "Buy milk"`)

	app.press("esc")
	assert.Equal(t, overlayNone, app.m.activeOverlay)
}

func TestStackFileChangeReloads(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)

	require.NoError(t, app.slot.Set(models.DefaultStorageKey, []byte(
		`[{"id":"Q","title":"From elsewhere","createdAt":"2025-01-01T00:00:00.000Z","done":false}]`)))
	app.send(FileChangedMsg{Event: watcher.Event{Type: watcher.EventStackChanged}})

	assert.Equal(t, "From elsewhere", app.m.frame.Stack.Top.Title)
}

func TestViewRendersScreens(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)

	out := app.m.View()
	assert.Contains(t, out, "topstack")
	assert.Contains(t, out, "Buy milk")
	assert.Len(t, strings.Split(out, "\n"), testHeight)

	app.press("2")
	assert.Contains(t, app.m.View(), "≡ [ ] C")

	app.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.Contains(t, app.m.View(), "Terminal too small")
}

func TestSettingsReloadAppliesTheme(t *testing.T) {
	app := newTestApp(t, threeTasks, nil)
	t.Cleanup(func() { applyAppearance(models.NewSettings().Appearance) })

	settings := models.NewSettings()
	settings.Appearance.Theme = "light"
	settings.Appearance.ShowDoneTime = false
	app.send(SettingsLoadedMsg{Settings: settings})

	assert.False(t, lipgloss.HasDarkBackground())
	assert.False(t, app.m.settings.Appearance.ShowDoneTime)

	settings.Appearance.Theme = "dark"
	app.send(SettingsLoadedMsg{Settings: settings})
	assert.True(t, lipgloss.HasDarkBackground())
}
