// Package session tracks which task title is being edited and where the
// caret should land when the field gains focus.
//
// Focus is two-phase: an edit intent records the target, and the next render
// asks Focus for at most one request to honour. The pending caret is consumed
// by the field it belongs to, so a later re-render places the caret at the
// end of the text instead of replaying an old click.
package session

import (
	"unicode/utf8"

	"github.com/topstack/topstack/internal/models"
)

// FocusRequest asks the UI to focus the title field of ID with the caret at
// Offset, counted in runes.
type FocusRequest struct {
	ID     string
	Offset int
}

type caret struct {
	id     string
	offset int
}

// Session is the editing state. The zero value is idle.
type Session struct {
	editing string
	pending *caret
}

// Editing returns the id being edited, or "".
func (s *Session) Editing() string { return s.editing }

// Active reports whether any title is being edited.
func (s *Session) Active() bool { return s.editing != "" }

// Begin starts editing id with the caret at the end of the text.
func (s *Session) Begin(id string) {
	s.editing = id
	s.pending = nil
}

// BeginAt starts editing id with the caret at offset.
func (s *Session) BeginAt(id string, offset int) {
	s.editing = id
	s.pending = &caret{id: id, offset: offset}
}

// End stops editing and reports whether id was the task being edited. The
// session is cleared in either case.
func (s *Session) End(id string) bool {
	matched := s.editing != "" && s.editing == id
	s.editing = ""
	s.pending = nil
	return matched
}

// ConsumeCaret returns and clears the pending caret if it belongs to id.
func (s *Session) ConsumeCaret(id string) (int, bool) {
	if s.pending == nil || s.pending.id != id {
		return 0, false
	}
	offset := s.pending.offset
	s.pending = nil
	return offset, true
}

// Forget drops any state tied to id.
func (s *Session) Forget(id string) {
	if s.editing == id {
		s.editing = ""
	}
	if s.pending != nil && s.pending.id == id {
		s.pending = nil
	}
}

// Focus returns the focus request for the current render. When the edited
// task no longer exists the session is cleared and nothing is requested.
func (s *Session) Focus(lookup func(id string) (models.Task, bool)) (FocusRequest, bool) {
	if s.editing == "" {
		return FocusRequest{}, false
	}
	t, ok := lookup(s.editing)
	if !ok {
		s.editing = ""
		s.pending = nil
		return FocusRequest{}, false
	}
	offset, ok := s.ConsumeCaret(t.ID)
	if !ok {
		offset = utf8.RuneCountInString(t.Title)
	}
	return FocusRequest{ID: t.ID, Offset: ClampOffset(offset, t.Title)}, true
}

// ClampOffset limits offset to [0, rune length of text].
func ClampOffset(offset int, text string) int {
	n := utf8.RuneCountInString(text)
	switch {
	case offset < 0:
		return 0
	case offset > n:
		return n
	default:
		return offset
	}
}
