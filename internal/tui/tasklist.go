package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/view"
)

// Row geometry shared by rendering and mouse hit-testing:
//
//	≡ [ ] title ................ 12:00:01  ✕
//	^ ^   ^
//	0 2   titleCol
const (
	checkboxCol = 2
	checkboxEnd = 5
	titleCol    = 6
	deleteWidth = 2 // "✕" plus a trailing space
)

// TaskList is the cursor and scroll state of the list and done screens.
type TaskList struct {
	cursor       int
	scrollOffset int
	height       int

	// dragFrom is the active index being dragged, or -1.
	dragFrom int
	dragOver int
}

// NewTaskList creates a new task list.
func NewTaskList() *TaskList {
	return &TaskList{dragFrom: -1, dragOver: -1}
}

// SetHeight sets the visible height.
func (tl *TaskList) SetHeight(h int) {
	tl.height = max(h, 1)
	tl.ensureVisible()
}

// Clamp keeps the cursor within n rows.
func (tl *TaskList) Clamp(n int) {
	if tl.cursor >= n {
		tl.cursor = n - 1
	}
	if tl.cursor < 0 {
		tl.cursor = 0
	}
	tl.ensureVisible()
}

// MoveUp moves the cursor up.
func (tl *TaskList) MoveUp() {
	if tl.cursor > 0 {
		tl.cursor--
	}
	tl.ensureVisible()
}

// MoveDown moves the cursor down within n rows.
func (tl *TaskList) MoveDown(n int) {
	if tl.cursor < n-1 {
		tl.cursor++
	}
	tl.ensureVisible()
}

// Select puts the cursor on index.
func (tl *TaskList) Select(index int) {
	tl.cursor = index
	tl.ensureVisible()
}

// Cursor returns the selected index.
func (tl *TaskList) Cursor() int { return tl.cursor }

// IndexAt maps a content row to a task index, or -1.
func (tl *TaskList) IndexAt(row, n int) int {
	if row < 0 || row >= tl.height {
		return -1
	}
	idx := tl.scrollOffset + row
	if idx >= n {
		return -1
	}
	return idx
}

// StartDrag begins dragging the task at index.
func (tl *TaskList) StartDrag(index int) {
	tl.dragFrom = index
	tl.dragOver = index
}

// DragOver records the row under the pointer while dragging.
func (tl *TaskList) DragOver(index int) {
	if tl.dragFrom >= 0 && index >= 0 {
		tl.dragOver = index
	}
}

// Dragging reports whether a drag is in progress.
func (tl *TaskList) Dragging() bool { return tl.dragFrom >= 0 }

// EndDrag finishes the drag and returns the move to apply.
func (tl *TaskList) EndDrag() (from, to int, ok bool) {
	from, to = tl.dragFrom, tl.dragOver
	tl.dragFrom, tl.dragOver = -1, -1
	return from, to, from >= 0 && to >= 0 && from != to
}

func (tl *TaskList) ensureVisible() {
	if tl.cursor < tl.scrollOffset {
		tl.scrollOffset = tl.cursor
	}
	if tl.height > 0 && tl.cursor >= tl.scrollOffset+tl.height {
		tl.scrollOffset = tl.cursor - tl.height + 1
	}
	if tl.scrollOffset < 0 {
		tl.scrollOffset = 0
	}
}

// rowOptions controls how a row is drawn.
type rowOptions struct {
	width      int
	selected   bool
	dropTarget bool
	emptyState bool
	doneTime   string
	// editor is the rendered title field when this row is being edited.
	editor string
}

func renderRow(t models.Task, o rowOptions) string {
	handle := handleStyle.Render("≡")
	if o.dropTarget {
		handle = dropTargetStyle.Render("▶")
	}

	box := checkboxStyle.Render("[ ]")
	if t.Done {
		box = checkedStyle.Render("[✓]")
	}

	right := deleteButtonStyle.Render("✕") + " "
	if o.doneTime != "" {
		right = doneTimeStyle.Render(o.doneTime) + "  " + right
	}

	titleWidth := o.width - titleCol - lipgloss.Width(right) - 1
	var title string
	switch {
	case o.editor != "":
		title = o.editor
	case view.IsBlank(t):
		title = placeholderStyle.Render(ansi.Truncate(view.PlaceholderText(o.emptyState), max(titleWidth, 1), "…"))
	case t.Done:
		title = doneTitleStyle.Render(ansi.Truncate(t.Title, max(titleWidth, 1), "…"))
	default:
		title = ansi.Truncate(t.Title, max(titleWidth, 1), "…")
	}

	left := handle + " " + box + " " + title
	gap := max(o.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := left + strings.Repeat(" ", gap) + right
	if o.selected {
		line = selectedItemStyle.Width(o.width).Render(line)
	}
	return line
}

// View renders the visible rows of tasks.
func (tl *TaskList) View(tasks []models.Task, width int, opts listOptions) string {
	if len(tasks) == 0 {
		return emptyListStyle.Render("  " + opts.emptyText)
	}

	end := min(tl.scrollOffset+tl.height, len(tasks))
	lines := make([]string, 0, end-tl.scrollOffset)
	for i := tl.scrollOffset; i < end; i++ {
		t := tasks[i]
		o := rowOptions{
			width:      width,
			selected:   i == tl.cursor,
			dropTarget: tl.Dragging() && i == tl.dragOver && i != tl.dragFrom,
			emptyState: opts.emptyState,
		}
		if opts.showDoneTime && t.Done {
			o.doneTime = view.FormatDoneAt(t.CompletedAt(), opts.now)
		}
		if t.ID == opts.editing {
			o.editor = opts.editor
		}
		lines = append(lines, renderRow(t, o))
	}
	return strings.Join(lines, "\n")
}

type listOptions struct {
	emptyText    string
	emptyState   bool
	showDoneTime bool
	now          time.Time
	editing      string
	editor       string
}

// rowHit says which part of a row a column falls in.
type rowHit int

const (
	hitNone rowHit = iota
	hitHandle
	hitCheckbox
	hitTitle
	hitDelete
)

func hitTest(col, width int) rowHit {
	switch {
	case col < checkboxCol:
		return hitHandle
	case col < checkboxEnd:
		return hitCheckbox
	case col >= width-deleteWidth-1 && col < width:
		return hitDelete
	case col >= titleCol:
		return hitTitle
	default:
		return hitNone
	}
}
