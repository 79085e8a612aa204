// Package stack implements the task repository: an ordered collection of
// tasks whose front element is the focal task.
//
// Tasks live in an arena keyed by id; a separate slice of ids carries stack
// order. Every mutation re-establishes the "at least one active task"
// invariant and persists the full stack before returning. Mutations that
// reference an absent id are silent no-ops and do not persist.
package stack

import (
	"log/slog"
	"strings"
	"time"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/models"
)

// Store persists the full stack in order.
type Store interface {
	Save(tasks []models.Task) error
}

// Option configures a Stack.
type Option func(*Stack)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Stack) { s.now = now }
}

// WithIDs overrides the id generator.
func WithIDs(newID func() string) Option {
	return func(s *Stack) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stack) { s.logger = config.Discard(l) }
}

// WithPlaceholderHook registers fn to run whenever a placeholder task is
// synthesized to keep the active set non-empty.
func WithPlaceholderHook(fn func(id string)) Option {
	return func(s *Stack) { s.onPlaceholder = fn }
}

// Stack is the task repository.
type Stack struct {
	tasks map[string]*models.Task
	order []string

	store         Store
	now           func() time.Time
	newID         func() string
	logger        *slog.Logger
	onPlaceholder func(id string)
}

// New returns a stack holding initial (in order). Duplicate ids after the
// first occurrence are dropped. The invariant is not enforced here; callers
// run EnsureActive once wiring is complete.
func New(store Store, initial []models.Task, opts ...Option) *Stack {
	s := &Stack{
		tasks:  make(map[string]*models.Task, len(initial)),
		store:  store,
		now:    time.Now,
		newID:  models.NewID,
		logger: config.Discard(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(initial)
	return s
}

func (s *Stack) load(tasks []models.Task) {
	s.tasks = make(map[string]*models.Task, len(tasks))
	s.order = make([]string, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := s.tasks[t.ID]; dup || t.ID == "" {
			continue
		}
		c := t.Clone()
		s.tasks[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
}

// Len returns the number of tasks, active and done.
func (s *Stack) Len() int { return len(s.order) }

// Tasks returns a copy of the stack in order.
func (s *Stack) Tasks() []models.Task {
	out := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// Get returns a copy of the task with id.
func (s *Stack) Get(id string) (models.Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return t.Clone(), true
}

// Add inserts a new active task at the front and returns its id.
func (s *Stack) Add(title string) (string, error) {
	t := models.NewTask(s.uniqueID(), strings.TrimSpace(title), s.now())
	s.tasks[t.ID] = &t
	s.order = append([]string{t.ID}, s.order...)
	s.logger.Debug("task added", "id", t.ID)
	return t.ID, s.commit()
}

// Delete removes the task with id.
func (s *Stack) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.tasks, id)
	s.logger.Debug("task deleted", "id", id)
	return s.commit()
}

// SetDone sets the completion flag of the task with id.
func (s *Stack) SetDone(id string, done bool) error {
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	t.SetDone(done, s.now())
	s.logger.Debug("task completion changed", "id", id, "done", done)
	return s.commit()
}

// Rename sets the title of the task with id, trimming surrounding
// whitespace. An empty result is kept.
func (s *Stack) Rename(id, title string) error {
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	t.Title = strings.TrimSpace(title)
	return s.commit()
}

// Reorder moves the active task at position from to position to, both
// measured within the active-only view. The moved task takes the absolute
// position the target held; intervening tasks shift by one. Out-of-range
// indexes or a move onto itself change nothing.
func (s *Stack) Reorder(from, to int) error {
	active := s.activeIDs()
	if from < 0 || to < 0 || from >= len(active) || to >= len(active) {
		return nil
	}
	fromID, toID := active[from], active[to]
	if fromID == toID {
		return nil
	}
	fromIndex, toIndex := s.index(fromID), s.index(toID)

	s.order = append(s.order[:fromIndex], s.order[fromIndex+1:]...)
	s.order = append(s.order[:toIndex], append([]string{fromID}, s.order[toIndex:]...)...)
	s.logger.Debug("task reordered", "id", fromID, "from", from, "to", to)
	return s.commit()
}

// Replace swaps the whole stack for tasks.
func (s *Stack) Replace(tasks []models.Task) error {
	s.load(tasks)
	s.logger.Info("stack replaced", "tasks", len(s.order))
	return s.commit()
}

// EnsureActive synthesizes an empty placeholder at the front when no active
// task remains. It reports the placeholder id when one was created.
func (s *Stack) EnsureActive() (string, bool) {
	for _, id := range s.order {
		if !s.tasks[id].Done {
			return "", false
		}
	}
	t := models.NewTask(s.uniqueID(), "", s.now())
	s.tasks[t.ID] = &t
	s.order = append([]string{t.ID}, s.order...)
	s.logger.Debug("placeholder synthesized", "id", t.ID)
	if s.onPlaceholder != nil {
		s.onPlaceholder(t.ID)
	}
	return t.ID, true
}

// Save persists the stack as is.
func (s *Stack) Save() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.Tasks())
}

func (s *Stack) commit() error {
	s.EnsureActive()
	return s.Save()
}

func (s *Stack) activeIDs() []string {
	ids := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if !s.tasks[id].Done {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Stack) index(id string) int {
	if _, ok := s.tasks[id]; !ok {
		return -1
	}
	for i, oid := range s.order {
		if oid == id {
			return i
		}
	}
	return -1
}

func (s *Stack) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.tasks[id]; !taken && id != "" {
			return id
		}
	}
}
