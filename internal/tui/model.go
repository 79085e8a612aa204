package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/engine"
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/view"
	"github.com/topstack/topstack/internal/watcher"
)

const (
	minWidth  = 40
	minHeight = 10

	errorTimeout  = 5 * time.Second
	noticeTimeout = 2 * time.Second
)

// Model is the root Bubbletea model for the TUI.
type Model struct {
	engine       *engine.Engine
	settings     *models.Settings
	settingsPath string
	frame        engine.Frame
	logger       *slog.Logger

	width  int
	height int

	activeOverlay int

	// Confirm mode
	confirmMode   int
	confirmTaskID string // "" targets the focused task
	pending       *engine.Pending

	// Status display
	err    error
	notice string

	// Child components
	editor     titleEditor
	activeList *TaskList
	doneList   *TaskList
	form       *SnapshotForm

	// reopen forces the editor to reload from the next focus request, for
	// edits the TUI itself starts.
	reopen bool

	// Program reference for goroutine Send()
	program *programRef
}

// NewModel creates the initial TUI model.
func NewModel(eng *engine.Engine, settings *models.Settings, settingsPath string, program *programRef, logger *slog.Logger) Model {
	if settings == nil {
		settings = models.NewSettings()
	}
	m := Model{
		engine:       eng,
		settings:     settings,
		settingsPath: settingsPath,
		logger:       config.Discard(logger),
		editor:       newTitleEditor(),
		activeList:   NewTaskList(),
		doneList:     NewTaskList(),
		program:      program,
	}
	applyAppearance(settings.Appearance)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case FileChangedMsg:
		switch msg.Event.Type {
		case watcher.EventSettingsChanged:
			if m.settingsPath != "" {
				return m, loadSettingsCmd(m.settingsPath)
			}
		case watcher.EventStackChanged:
			return m, m.apply(m.engine.Reload())
		}
		return m, nil

	case SettingsLoadedMsg:
		m.settings = msg.Settings
		applyAppearance(msg.Settings.Appearance)
		m.logger.Debug("settings reloaded")
		return m, nil

	case CopiedMsg:
		m.notice = "✓ Copied to clipboard"
		return m, clearSavedAfter(noticeTimeout)

	case ErrorMsg:
		m.err = msg.Err
		m.logger.Warn("tui error", "error", msg.Err)
		return m, clearErrorAfter(errorTimeout)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case ClearSavedMsg:
		m.notice = ""
		return m, nil
	}

	// Cursor blink and other component messages.
	if m.editor.active() {
		var cmd tea.Cmd
		m.editor.input, cmd = m.editor.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.form != nil {
		var cmd tea.Cmd
		*m.form.Area(), cmd = m.form.Area().Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// refresh pulls a new frame and syncs the title editor with the session.
func (m *Model) refresh() {
	m.frame = m.engine.Frame()
	m.activeList.Clamp(len(m.frame.Stack.Active))
	m.doneList.Clamp(len(m.frame.Stack.Done))
	m.editor.input.Placeholder = view.PlaceholderText(m.frame.Stack.Placeholder && m.frame.View != view.Done)

	focus := m.frame.Focus
	switch {
	case focus == nil:
		if m.editor.active() {
			m.editor.close()
		}
	case focus.ID != m.editor.id || m.reopen:
		if t, ok := m.findTask(focus.ID); ok {
			m.editor.open(t.ID, t.Title, focus.Offset, m.editorWidth())
			m.selectTask(t.ID)
		}
	}
	m.reopen = false
}

// apply refreshes after an engine call and surfaces its error.
func (m *Model) apply(err error) tea.Cmd {
	m.refresh()
	if err != nil {
		m.err = err
		return clearErrorAfter(errorTimeout)
	}
	return nil
}

func (m *Model) findTask(id string) (models.Task, bool) {
	for _, t := range m.frame.Stack.Active {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range m.frame.Stack.Done {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// selectTask moves the cursor of the current list onto id.
func (m *Model) selectTask(id string) {
	tasks, list := m.currentList()
	if list == nil {
		return
	}
	for i, t := range tasks {
		if t.ID == id {
			list.Select(i)
			return
		}
	}
}

// currentList returns the rows and cursor of the list or done screen, or a
// nil list on the main screen.
func (m *Model) currentList() ([]models.Task, *TaskList) {
	switch m.frame.View {
	case view.List:
		return m.frame.Stack.Active, m.activeList
	case view.Done:
		return m.frame.Stack.Done, m.doneList
	default:
		return nil, nil
	}
}

func (m *Model) selectedTask() (models.Task, bool) {
	tasks, list := m.currentList()
	if list == nil {
		return m.frame.Stack.Top, m.frame.Stack.HasTop
	}
	if i := list.Cursor(); i >= 0 && i < len(tasks) {
		return tasks[i], true
	}
	return models.Task{}, false
}

func (m *Model) editorWidth() int {
	if m.frame.View == view.Main {
		return computeLayout(m.width, m.height).titleWidth
	}
	return max(m.width-titleCol-deleteWidth-12, 1)
}

func (m *Model) updateDimensions() {
	l := computeLayout(m.width, m.height)
	m.activeList.SetHeight(l.contentHeight)
	m.doneList.SetHeight(l.contentHeight)
	if m.editor.active() {
		m.editor.input.Width = m.editorWidth()
	}
	if m.form != nil {
		m.form.Area().SetWidth(max(min(m.width, 90)-8, 20))
	}
}

// commitEdit closes the title field and stores its text.
func (m *Model) commitEdit() tea.Cmd {
	if !m.editor.active() {
		return nil
	}
	id := m.editor.id
	text := m.editor.close()
	return m.apply(m.engine.EndEdit(id, text))
}

func (m *Model) switchView(name view.Name) {
	if name == m.frame.View {
		return
	}
	m.engine.SwitchView(name)
	m.refresh()
	if m.editor.active() {
		m.editor.input.Width = m.editorWidth()
	}
}

func (m *Model) cycleView(step int) {
	idx := 0
	for i, n := range view.Names {
		if n == m.frame.View {
			idx = i
		}
	}
	idx = (idx + step + len(view.Names)) % len(view.Names)
	m.switchView(view.Names[idx])
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}
	if m.activeOverlay != overlayNone {
		return m.handleOverlayKey(msg)
	}
	if m.editor.active() {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, globalKeys.Quit):
		return m.doQuit()
	case key.Matches(msg, globalKeys.Help):
		m.activeOverlay = overlayHelp
		return nil
	case key.Matches(msg, viewKeys.Main):
		m.switchView(view.Main)
		return nil
	case key.Matches(msg, viewKeys.List):
		m.switchView(view.List)
		return nil
	case key.Matches(msg, viewKeys.Done):
		m.switchView(view.Done)
		return nil
	case key.Matches(msg, viewKeys.Left):
		m.cycleView(-1)
		return nil
	case key.Matches(msg, viewKeys.Right):
		m.cycleView(1)
		return nil
	}

	if m.frame.View != view.Main {
		if cmd, handled := m.handleListKey(msg); handled {
			return cmd
		}
	}

	switch {
	case key.Matches(msg, stackKeys.Add):
		if m.frame.View == view.Done {
			m.engine.SwitchView(view.Main)
		}
		_, err := m.engine.Add("", true)
		m.activeList.Select(0)
		return m.apply(err)

	case key.Matches(msg, stackKeys.Complete):
		return m.apply(m.engine.CompleteTop())

	case key.Matches(msg, stackKeys.Delete):
		target := ""
		if m.frame.View != view.Main {
			t, ok := m.selectedTask()
			if !ok {
				return nil
			}
			target = t.ID
		}
		if m.settings.Appearance.ConfirmDelete {
			m.confirmMode = confirmDelete
			m.confirmTaskID = target
			return nil
		}
		return m.deleteTask(target)

	case key.Matches(msg, stackKeys.Edit):
		if t, ok := m.selectedTask(); ok {
			m.engine.BeginEdit(t.ID)
			m.reopen = true
			m.refresh()
		}
		return nil

	case key.Matches(msg, stackKeys.Import):
		m.openForm(overlayImport, "")
		return nil

	case key.Matches(msg, stackKeys.Export):
		data, err := m.engine.Export()
		if err != nil {
			return m.apply(err)
		}
		m.openForm(overlayExport, string(data))
		return nil

	case key.Matches(msg, stackKeys.Clear):
		m.pending = m.engine.ProposeClear()
		m.confirmMode = confirmReplace
		return nil
	}
	return nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	tasks, list := m.currentList()
	switch {
	case key.Matches(msg, listKeys.Up):
		list.MoveUp()
	case key.Matches(msg, listKeys.Down):
		list.MoveDown(len(tasks))
	case key.Matches(msg, listKeys.MoveUp):
		if m.frame.View != view.List || list.Cursor() == 0 {
			return nil, true
		}
		from := list.Cursor()
		list.Select(from - 1)
		return m.apply(m.engine.Reorder(from, from-1)), true
	case key.Matches(msg, listKeys.MoveDown):
		from := list.Cursor()
		if m.frame.View != view.List || from >= len(tasks)-1 {
			return nil, true
		}
		list.Select(from + 1)
		return m.apply(m.engine.Reorder(from, from+1)), true
	case key.Matches(msg, listKeys.Toggle):
		if t, ok := m.selectedTask(); ok {
			return m.apply(m.engine.SetDone(t.ID, !t.Done)), true
		}
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, globalKeys.Quit):
		return m.doQuit()
	case key.Matches(msg, editKeys.Commit):
		return m.commitEdit()
	}
	var cmd tea.Cmd
	m.editor.input, cmd = m.editor.input.Update(msg)
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		switch m.confirmMode {
		case confirmDelete:
			m.confirmMode = confirmNone
			return m.deleteTask(m.confirmTaskID)
		case confirmReplace:
			m.confirmMode = confirmNone
			return m.commitPending()
		}
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		if m.pending != nil {
			m.pending.Discard()
			m.pending = nil
		}
		m.confirmMode = confirmNone
	}
	return nil
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	if m.activeOverlay == overlayHelp {
		if key.Matches(msg, overlayKeys.Cancel) || key.Matches(msg, globalKeys.Help) {
			m.activeOverlay = overlayNone
		}
		return nil
	}

	switch {
	case key.Matches(msg, overlayKeys.Cancel):
		m.closeForm()
		return nil
	case key.Matches(msg, overlayKeys.Confirm):
		if m.activeOverlay == overlayExport {
			return copyToClipboardCmd(m.form.Value())
		}
		p, err := m.engine.ProposeImport(m.form.Value())
		if err != nil {
			m.form.SetError(err.Error())
			return nil
		}
		m.form.SetError("")
		m.pending = p
		m.confirmMode = confirmReplace
		return nil
	}

	var cmd tea.Cmd
	*m.form.Area(), cmd = m.form.Area().Update(msg)
	return cmd
}

func (m *Model) openForm(mode int, text string) {
	height := max(m.height-14, 3)
	m.form = NewSnapshotForm(mode, text, min(max(m.width-4, 30), 90), height)
	m.activeOverlay = mode
}

func (m *Model) closeForm() {
	m.form = nil
	m.activeOverlay = overlayNone
}

func (m *Model) deleteTask(id string) tea.Cmd {
	if id == "" {
		return m.apply(m.engine.DeleteFocused())
	}
	return m.apply(m.engine.Delete(id))
}

func (m *Model) commitPending() tea.Cmd {
	p := m.pending
	m.pending = nil
	if p == nil {
		return nil
	}
	n := len(p.Tasks())
	kind := p.Kind
	m.editor.close()
	if err := m.engine.Commit(p); err != nil {
		return m.apply(err)
	}
	m.closeForm()
	m.reopen = true
	cmd := m.apply(nil)
	if kind == engine.PendingImport {
		m.notice = fmt.Sprintf("✓ Imported %d todos", n)
	} else {
		m.notice = "✓ Stack cleared"
	}
	return tea.Batch(cmd, clearSavedAfter(noticeTimeout))
}

func (m *Model) doQuit() tea.Cmd {
	if m.editor.active() {
		m.commitEdit()
	}
	if m.program != nil {
		m.program.Clear()
	}
	return tea.Quit
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.activeOverlay != overlayNone || m.confirmMode != confirmNone {
		return nil
	}
	layout := computeLayout(m.width, m.height)
	tasks, list := m.currentList()

	switch msg.Action {
	case tea.MouseActionMotion:
		if list != nil && list.Dragging() {
			list.DragOver(list.IndexAt(msg.Y-layout.contentTop, len(tasks)))
		}
		return nil

	case tea.MouseActionRelease:
		if list == nil || !list.Dragging() {
			return nil
		}
		from, to, ok := list.EndDrag()
		if !ok {
			return nil
		}
		list.Select(to)
		return m.apply(m.engine.Reorder(from, to))
	}

	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if list != nil {
			list.MoveUp()
		}
		return nil
	case tea.MouseButtonWheelDown:
		if list != nil {
			list.MoveDown(len(tasks))
		}
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}

	// A click inside the title being edited only moves the caret.
	if m.editor.active() {
		if left, ok := m.editorLeft(msg.Y, layout); ok && msg.X >= left {
			m.editor.input.SetCursor(offsetAtColumn(m.editor.input.Value(), msg.X-left))
			return nil
		}
	}
	var cmds []tea.Cmd
	if m.editor.active() {
		cmds = append(cmds, m.commitEdit())
		tasks, list = m.currentList()
	}

	if msg.Y == 0 {
		if name, ok := tabAt(msg.X); ok {
			m.switchView(name)
		}
		return tea.Batch(cmds...)
	}

	if list == nil {
		cmds = append(cmds, m.handleCardClick(msg.X, msg.Y, layout))
		return tea.Batch(cmds...)
	}

	idx := list.IndexAt(msg.Y-layout.contentTop, len(tasks))
	if idx < 0 {
		return tea.Batch(cmds...)
	}
	t := tasks[idx]
	list.Select(idx)

	switch hitTest(msg.X, m.width) {
	case hitHandle:
		if m.frame.View == view.List {
			list.StartDrag(idx)
		}
	case hitCheckbox:
		cmds = append(cmds, m.apply(m.engine.SetDone(t.ID, !t.Done)))
	case hitTitle:
		m.beginEditAt(t, msg.X-titleCol)
	case hitDelete:
		if m.settings.Appearance.ConfirmDelete {
			m.confirmMode = confirmDelete
			m.confirmTaskID = t.ID
		} else {
			cmds = append(cmds, m.deleteTask(t.ID))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleCardClick(x, y int, layout screenLayout) tea.Cmd {
	top, ok := m.frame.Stack.Top, m.frame.Stack.HasTop
	if !ok || y != layout.titleRow {
		return nil
	}
	switch {
	case x >= layout.boxLeft && x < layout.boxLeft+3:
		return m.apply(m.engine.SetDone(top.ID, !top.Done))
	case x >= layout.titleLeft:
		m.beginEditAt(top, x-layout.titleLeft)
	}
	return nil
}

// beginEditAt opens t for editing with the caret under column col of its
// title. Blank titles show a hint, so the caret starts at 0.
func (m *Model) beginEditAt(t models.Task, col int) {
	offset := 0
	if !view.IsBlank(t) {
		offset = offsetAtColumn(t.Title, col)
	}
	m.engine.BeginEditAt(t.ID, offset)
	m.reopen = true
	m.refresh()
}

// editorLeft returns the first screen column of the title field when row y
// shows it.
func (m *Model) editorLeft(y int, layout screenLayout) (int, bool) {
	tasks, list := m.currentList()
	if list == nil {
		if m.frame.Stack.HasTop && m.frame.Stack.Top.ID == m.editor.id && y == layout.titleRow {
			return layout.titleLeft, true
		}
		return 0, false
	}
	idx := list.IndexAt(y-layout.contentTop, len(tasks))
	if idx >= 0 && tasks[idx].ID == m.editor.id {
		return titleCol, true
	}
	return 0, false
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					fmt.Sprintf("Need %dx%d, have ", minWidth, minHeight)+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	layout := computeLayout(m.width, m.height)

	header := renderHeader(m.frame, m.width)
	body := lipgloss.NewStyle().
		Height(layout.contentHeight).
		MaxHeight(layout.contentHeight).
		Render(m.renderBody(layout))
	statusBar := renderStatusBar(&m, m.width)

	out := lipgloss.JoinVertical(lipgloss.Left, header, "", body, statusBar)

	if m.activeOverlay != overlayNone {
		var overlayContent string
		switch m.activeOverlay {
		case overlayHelp:
			overlayContent = renderHelp(m.width)
		case overlayImport, overlayExport:
			if m.form != nil {
				overlayContent = m.form.View()
			}
		}
		if overlayContent != "" {
			out = renderOverlay(out, overlayContent, m.width, m.height)
		}
	}
	return out
}

func (m Model) renderBody(layout screenLayout) string {
	editorView := ""
	if m.editor.active() {
		editorView = m.editor.input.View()
	}
	s := m.frame.Stack

	switch m.frame.View {
	case view.List:
		return m.activeList.View(s.Active, m.width, listOptions{
			emptyText:  "Nothing to do. Press n to add a todo.",
			emptyState: s.Placeholder,
			editing:    m.editor.id,
			editor:     editorView,
		})
	case view.Done:
		return m.doneList.View(s.Done, m.width, listOptions{
			emptyText:    "No finished todos yet.",
			emptyState:   true,
			showDoneTime: m.settings.Appearance.ShowDoneTime,
			now:          m.engine.Now(),
			editing:      m.editor.id,
			editor:       editorView,
		})
	default:
		opts := cardOptions{emptyState: s.Placeholder}
		if s.HasTop && s.Top.ID == m.editor.id {
			opts.editor = editorView
		}
		return renderCard(s.Top, s.HasTop, layout, opts) + "\n\n" + renderMainHints(layout)
	}
}
