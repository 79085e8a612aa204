// Package engine runs every user intent as one unit of work: mutate the
// stack, restore the active-task invariant, persist, and expose the next
// frame to render.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/session"
	"github.com/topstack/topstack/internal/snapshot"
	"github.com/topstack/topstack/internal/stack"
	"github.com/topstack/topstack/internal/view"
)

// ErrPendingUsed is returned when a pending change is committed twice or
// against another engine.
var ErrPendingUsed = errors.New("pending change already applied or discarded")

// Store loads and saves the whole stack. Load reports only failures to
// read; unusable contents come back as an empty stack.
type Store interface {
	Load() ([]models.Task, error)
	Save(tasks []models.Task) error
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDs overrides the task id generator.
func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Frame is the render input after a unit of work.
type Frame struct {
	View    view.Name
	Stack   view.Projection
	Editing string
	// Focus is set when a title field should take focus on this render.
	Focus *session.FocusRequest
	// SaveErr holds the last persistence failure until a write succeeds.
	SaveErr error
}

// Engine owns the stack and the editing session.
type Engine struct {
	mu      sync.Mutex
	store   Store
	stack   *stack.Stack
	session session.Session
	view    view.Name
	saveErr error
	now     func() time.Time
	logger  *slog.Logger
	opts    []stack.Option
}

// New loads the stack from store. An empty store is seeded with a
// placeholder that opens in edit mode and is persisted; a store holding only
// done tasks gets the placeholder in memory until the next write. A store
// that cannot be read is an error, so nothing overwrites it.
func New(store Store, opts ...Option) (*Engine, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		store:  store,
		view:   view.Main,
		now:    o.now,
		logger: config.Discard(o.logger),
	}
	e.opts = []stack.Option{
		stack.WithClock(o.now),
		stack.WithLogger(e.logger),
		stack.WithPlaceholderHook(e.session.Begin),
	}
	if o.newID != nil {
		e.opts = append(e.opts, stack.WithIDs(o.newID))
	}

	initial, err := store.Load()
	if err != nil {
		return nil, err
	}
	e.stack = stack.New(recorder{e}, initial, e.opts...)
	if _, created := e.stack.EnsureActive(); created && len(initial) == 0 {
		_ = e.stack.Save()
	}
	return e, nil
}

// recorder forwards writes to the store and remembers the outcome for the
// next frame.
type recorder struct{ e *Engine }

func (r recorder) Save(tasks []models.Task) error {
	err := r.e.store.Save(tasks)
	r.e.saveErr = err
	if err != nil {
		r.e.logger.Error("persisting stack failed", "error", err)
	}
	return err
}

// Reload replaces the in-memory stack with the store's current contents,
// for changes written by another process. It does not write. While the last
// save failed the store is behind memory, and memory is kept.
func (e *Engine) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saveErr != nil {
		e.logger.Warn("skipping reload with unsaved changes", "error", e.saveErr)
		return nil
	}
	tasks, err := e.store.Load()
	if err != nil {
		return err
	}
	e.stack = stack.New(recorder{e}, tasks, e.opts...)
	e.stack.EnsureActive()
	e.logger.Debug("stack reloaded", "tasks", e.stack.Len())
	return nil
}

// Add pushes a new task onto the stack. With edit set the new task's title
// opens for editing.
func (e *Engine) Add(title string, edit bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if edit {
		e.session.End(e.session.Editing())
	}
	id, err := e.stack.Add(title)
	if edit {
		e.session.Begin(id)
	}
	return id, err
}

// Delete removes a task.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Forget(id)
	return e.stack.Delete(id)
}

// SetDone marks a task done or active.
func (e *Engine) SetDone(id string, done bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.SetDone(id, done)
}

// Rename sets a task's title outside an editing session.
func (e *Engine) Rename(id, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Rename(id, title)
}

// BeginEdit opens a task's title for editing with the caret at the end.
func (e *Engine) BeginEdit(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.stack.Get(id); ok {
		e.session.Begin(id)
	}
}

// BeginEditAt opens a task's title for editing with the caret at offset.
func (e *Engine) BeginEditAt(id string, offset int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.stack.Get(id); ok {
		e.session.BeginAt(id, offset)
	}
}

// EndEdit closes the editing session and stores text as the title of id.
// A stale id only closes the session.
func (e *Engine) EndEdit(id, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.session.End(id) {
		return nil
	}
	return e.stack.Rename(id, text)
}

// Editing returns the id being edited, or "".
func (e *Engine) Editing() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Editing()
}

// Reorder moves an active task within the active list.
func (e *Engine) Reorder(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Reorder(from, to)
}

// CompleteTop marks the focal task done.
func (e *Engine) CompleteTop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	top, ok := view.Top(e.stack.Tasks())
	if !ok {
		return nil
	}
	return e.stack.SetDone(top.ID, true)
}

// DeleteFocused deletes the most recently completed task on the done view
// and the focal task everywhere else.
func (e *Engine) DeleteFocused() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tasks := e.stack.Tasks()
	var target []models.Task
	if e.view == view.Done {
		target = view.DoneTasks(tasks)
	} else {
		target = view.ActiveTasks(tasks)
	}
	if len(target) == 0 {
		return nil
	}
	e.session.Forget(target[0].ID)
	return e.stack.Delete(target[0].ID)
}

// SwitchView changes the current screen.
func (e *Engine) SwitchView(name view.Name) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = name
}

// Tasks returns the stack in order.
func (e *Engine) Tasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Tasks()
}

// Export renders the stack as indented JSON.
func (e *Engine) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot.Export(e.stack.Tasks())
}

// Frame computes the next render input. It consumes a pending caret, so each
// focus request is emitted once.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := Frame{
		View:    e.view,
		Stack:   view.Project(e.stack.Tasks()),
		SaveErr: e.saveErr,
	}
	if req, ok := e.session.Focus(e.stack.Get); ok {
		f.Focus = &req
	}
	f.Editing = e.session.Editing()
	return f
}

// Now returns the engine's clock reading.
func (e *Engine) Now() time.Time { return e.now() }
