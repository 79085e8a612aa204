package engine

import (
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/snapshot"
)

// PendingKind says what a pending change replaces the stack with.
type PendingKind int

const (
	PendingImport PendingKind = iota
	PendingClear
)

func (k PendingKind) String() string {
	if k == PendingClear {
		return "clear"
	}
	return "import"
}

// Pending is a validated whole-stack replacement awaiting confirmation. The
// live stack is untouched until Commit.
type Pending struct {
	Kind  PendingKind
	tasks []models.Task
	owner *Engine
	used  bool
}

// Tasks returns the stack the change would install.
func (p *Pending) Tasks() []models.Task {
	out := make([]models.Task, len(p.tasks))
	for i, t := range p.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Prompt is the confirmation question for the change.
func (p *Pending) Prompt() string {
	if p.Kind == PendingClear {
		return "Clear the entire stack?"
	}
	return "Replace current stack with imported data?"
}

// ProposeImport validates text and returns the change it would make.
func (e *Engine) ProposeImport(text string) (*Pending, error) {
	tasks, err := snapshot.Parse(text, snapshot.WithNow(e.now), snapshot.WithLogger(e.logger))
	if err != nil {
		e.logger.Warn("import rejected", "error", err)
		return nil, err
	}
	return &Pending{Kind: PendingImport, tasks: tasks, owner: e}, nil
}

// ProposeClear returns a change that empties the stack.
func (e *Engine) ProposeClear() *Pending {
	return &Pending{Kind: PendingClear, owner: e}
}

// Commit applies a confirmed change. The editing session is reset; an
// empty result is seeded with a placeholder that opens for editing.
func (e *Engine) Commit(p *Pending) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p == nil || p.used || p.owner != e {
		return ErrPendingUsed
	}
	p.used = true
	e.session.End(e.session.Editing())
	e.logger.Info("replacing stack", "kind", p.Kind.String(), "tasks", len(p.tasks))
	return e.stack.Replace(p.tasks)
}

// Discard drops a change without applying it.
func (p *Pending) Discard() {
	if p != nil {
		p.used = true
	}
}
