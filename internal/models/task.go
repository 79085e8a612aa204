// Package models contains shared data structures used across the application.
package models

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the ISO-8601 layout used for persisted and exported timestamps.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Task is a single entry of the stack.
// This corresponds to one element of the persisted JSON array.
type Task struct {
	ID        string    // immutable after creation
	Title     string    // may be empty for a placeholder
	CreatedAt time.Time // immutable, UTC
	Done      bool
	DoneAt    *time.Time // nil whenever Done is false
}

// NewTask creates an active task stamped with now.
func NewTask(id, title string, now time.Time) Task {
	return Task{
		ID:        id,
		Title:     title,
		CreatedAt: Stamp(now),
	}
}

// Stamp normalizes a clock reading to the stored precision: UTC, whole
// milliseconds.
func Stamp(now time.Time) time.Time {
	return now.UTC().Truncate(time.Millisecond)
}

// NewID returns a fresh task id. It prefers a random UUID and falls back to a
// time+random id when no UUID source is available.
func NewID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	var b [6]byte
	_, _ = rand.Read(b[:])
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + hex.EncodeToString(b[:])
}

// SetDone updates the completion flag. A false→true transition stamps now;
// re-confirming an already done task keeps its original completion time;
// clearing the flag clears the timestamp.
func (t *Task) SetDone(done bool, now time.Time) {
	wasDone := t.Done
	t.Done = done
	if !done {
		t.DoneAt = nil
		return
	}
	if wasDone && t.DoneAt != nil {
		return
	}
	stamp := Stamp(now)
	t.DoneAt = &stamp
}

// CompletedAt returns DoneAt, falling back to CreatedAt when unset.
func (t Task) CompletedAt() time.Time {
	if t.DoneAt != nil {
		return *t.DoneAt
	}
	return t.CreatedAt
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DoneAt != nil {
		d := *t.DoneAt
		t.DoneAt = &d
	}
	return t
}

// taskJSON is the wire form of a Task.
type taskJSON struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	CreatedAt string  `json:"createdAt"`
	Done      bool    `json:"done"`
	DoneAt    *string `json:"doneAt"`
}

// MarshalJSON writes the task in the persisted record format.
func (t Task) MarshalJSON() ([]byte, error) {
	w := taskJSON{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: FormatTime(t.CreatedAt),
		Done:      t.Done,
	}
	if t.DoneAt != nil {
		s := FormatTime(*t.DoneAt)
		w.DoneAt = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a task in the persisted record format. It is strict:
// tolerant coercion of hand-edited input belongs to the snapshot package.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("task record has no id")
	}
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return fmt.Errorf("task %s: createdAt: %w", w.ID, err)
	}
	*t = Task{ID: w.ID, Title: w.Title, CreatedAt: created, Done: w.Done}
	if w.Done && w.DoneAt != nil {
		doneAt, err := ParseTime(*w.DoneAt)
		if err != nil {
			return fmt.Errorf("task %s: doneAt: %w", w.ID, err)
		}
		t.DoneAt = &doneAt
	}
	return nil
}

// FormatTime renders a timestamp in TimeLayout, always in UTC.
func FormatTime(ts time.Time) string {
	return ts.UTC().Format(TimeLayout)
}

var parseLayouts = []string{
	time.RFC3339Nano,
	TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts any RFC 3339 timestamp, a local date-time without zone, or
// a bare date. The result is in UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
