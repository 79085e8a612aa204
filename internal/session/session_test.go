package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topstack/topstack/internal/models"
)

func lookupOf(tasks ...models.Task) func(string) (models.Task, bool) {
	return func(id string) (models.Task, bool) {
		for _, t := range tasks {
			if t.ID == id {
				return t, true
			}
		}
		return models.Task{}, false
	}
}

var hello = models.NewTask("h", "héllo", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

func TestFocusPlacesCaret(t *testing.T) {
	tests := []struct {
		name   string
		begin  func(*Session)
		offset int
	}{
		{"end of text by default", func(s *Session) { s.Begin("h") }, 5},
		{"pending caret", func(s *Session) { s.BeginAt("h", 2) }, 2},
		{"clamped high", func(s *Session) { s.BeginAt("h", 99) }, 5},
		{"clamped low", func(s *Session) { s.BeginAt("h", -3) }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Session
			tt.begin(&s)
			req, ok := s.Focus(lookupOf(hello))
			require.True(t, ok)
			assert.Equal(t, FocusRequest{ID: "h", Offset: tt.offset}, req)
		})
	}
}

func TestCaretIsConsumedOnce(t *testing.T) {
	var s Session
	s.BeginAt("h", 1)

	req, _ := s.Focus(lookupOf(hello))
	assert.Equal(t, 1, req.Offset)

	req, ok := s.Focus(lookupOf(hello))
	require.True(t, ok, "still editing")
	assert.Equal(t, 5, req.Offset)
}

func TestConsumeCaretIgnoresOtherIDs(t *testing.T) {
	var s Session
	s.BeginAt("h", 1)

	_, ok := s.ConsumeCaret("other")
	assert.False(t, ok)

	off, ok := s.ConsumeCaret("h")
	assert.True(t, ok)
	assert.Equal(t, 1, off)
}

func TestFocusClearsWhenTaskGone(t *testing.T) {
	var s Session
	s.BeginAt("gone", 1)

	_, ok := s.Focus(lookupOf(hello))
	assert.False(t, ok)
	assert.False(t, s.Active())
}

func TestEnd(t *testing.T) {
	var s Session
	s.Begin("h")
	assert.False(t, s.End("other"), "stale id")
	assert.False(t, s.Active(), "session cleared regardless")

	s.Begin("h")
	assert.True(t, s.End("h"))
	assert.Equal(t, "", s.Editing())

	assert.False(t, s.End(""))
}

func TestForget(t *testing.T) {
	var s Session
	s.BeginAt("h", 3)
	s.Forget("other")
	assert.Equal(t, "h", s.Editing())

	s.Forget("h")
	assert.False(t, s.Active())
	_, ok := s.ConsumeCaret("h")
	assert.False(t, ok)
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, 0, ClampOffset(-1, "abc"))
	assert.Equal(t, 2, ClampOffset(2, "abc"))
	assert.Equal(t, 3, ClampOffset(7, "abc"))
	assert.Equal(t, 2, ClampOffset(4, "🫶x"))
	assert.Equal(t, 0, ClampOffset(3, ""))
}
