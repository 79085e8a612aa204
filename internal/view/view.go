// Package view derives the read-only projections the UI renders from the
// stack. Nothing here mutates or caches state.
package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/topstack/topstack/internal/models"
)

// Name identifies a screen.
type Name string

// Screens.
const (
	Main Name = "main"
	List Name = "list"
	Done Name = "done"
)

// Names lists the screens in tab order.
var Names = []Name{Main, List, Done}

// ParseName maps a screen name to a Name.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Projection is everything a frame needs to know about the stack.
type Projection struct {
	Active      []models.Task
	Done        []models.Task
	Top         models.Task
	HasTop      bool
	Placeholder bool
}

// Project computes all projections in one pass.
func Project(tasks []models.Task) Projection {
	p := Projection{
		Active: ActiveTasks(tasks),
		Done:   DoneTasks(tasks),
	}
	if len(p.Active) > 0 {
		p.Top, p.HasTop = p.Active[0], true
	}
	p.Placeholder = placeholderState(p.Active)
	return p
}

// ActiveTasks returns the not-done tasks in stack order.
func ActiveTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out
}

// DoneTasks returns the done tasks, most recently completed first. Ties and
// tasks without a completion time fall back to creation time; equal keys keep
// stack order.
func DoneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Done {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt().After(out[j].CompletedAt())
	})
	return out
}

// Top returns the first active task.
func Top(tasks []models.Task) (models.Task, bool) {
	for _, t := range tasks {
		if !t.Done {
			return t, true
		}
	}
	return models.Task{}, false
}

// IsPlaceholderState reports whether the only active task has a blank title.
func IsPlaceholderState(tasks []models.Task) bool {
	return placeholderState(ActiveTasks(tasks))
}

func placeholderState(active []models.Task) bool {
	return len(active) == 1 && IsBlank(active[0])
}

// IsBlank reports whether t has no visible title.
func IsBlank(t models.Task) bool {
	return strings.TrimSpace(t.Title) == ""
}

// DisplayTitle returns the title to show for t, substituting the hint for a
// blank title.
func DisplayTitle(t models.Task, emptyState bool) string {
	if IsBlank(t) {
		return PlaceholderText(emptyState)
	}
	return t.Title
}

// Placeholder hints shown in an empty title field.
const (
	HintDefault = "What do you want to do?"
	HintEmpty   = "Quite empty here... Click to add your first todo 🫶"
)

// PlaceholderText returns the hint for an empty title field.
func PlaceholderText(emptyState bool) string {
	if emptyState {
		return HintEmpty
	}
	return HintDefault
}

// FormatDoneAt renders a completion time in local time: the time of day when
// it falls on the same calendar day as now, otherwise day and month too.
func FormatDoneAt(doneAt, now time.Time) string {
	local := doneAt.In(now.Location())
	y1, m1, d1 := local.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return local.Format("15:04:05")
	}
	return local.Format("02.01, 15:04:05")
}
