package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/session"
	"github.com/topstack/topstack/internal/snapshot"
	"github.com/topstack/topstack/internal/storage"
	"github.com/topstack/topstack/internal/view"
)

type harness struct {
	engine *Engine
	slot   *storage.MemorySlot
	store  *storage.Adapter
	clock  time.Time
}

func newHarness(t *testing.T, stored string) *harness {
	t.Helper()
	h := &harness{
		slot:  storage.NewMemorySlot(),
		clock: time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC),
	}
	if stored != "" {
		require.NoError(t, h.slot.Set(models.DefaultStorageKey, []byte(stored)))
	}
	h.store = storage.NewAdapter(h.slot, "", nil)
	n := 0
	var err error
	h.engine, err = New(h.store,
		WithClock(func() time.Time { return h.clock }),
		WithIDs(func() string { n++; return fmt.Sprintf("t%d", n) }),
	)
	require.NoError(t, err)
	return h
}

func (h *harness) persisted(t *testing.T) []models.Task {
	t.Helper()
	tasks, err := h.store.Load()
	require.NoError(t, err)
	return tasks
}

func (h *harness) tick() { h.clock = h.clock.Add(time.Second) }

func titlesOf(tasks []models.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

const abc = `[
 {"id":"A","title":"A","createdAt":"2025-01-01T00:00:00.000Z","done":false,"doneAt":null},
 {"id":"B","title":"B","createdAt":"2025-01-01T00:00:00.000Z","done":false,"doneAt":null},
 {"id":"C","title":"C","createdAt":"2025-01-01T00:00:00.000Z","done":false,"doneAt":null}
]`

func TestEmptyStartToFirstTask(t *testing.T) {
	h := newHarness(t, "")

	frame := h.engine.Frame()
	require.Len(t, frame.Stack.Active, 1)
	placeholder := frame.Stack.Active[0]
	assert.Equal(t, "", placeholder.Title)
	assert.True(t, frame.Stack.Placeholder)
	assert.Equal(t, placeholder.ID, frame.Editing, "placeholder opens for editing")
	require.NotNil(t, frame.Focus)
	assert.Equal(t, 0, frame.Focus.Offset)
	assert.Len(t, h.persisted(t), 1, "seeded placeholder is persisted")

	require.NoError(t, h.engine.EndEdit(placeholder.ID, "  Buy milk "))

	frame = h.engine.Frame()
	assert.Equal(t, []string{"Buy milk"}, titlesOf(frame.Stack.Active))
	assert.Equal(t, "Buy milk", frame.Stack.Top.Title)
	assert.False(t, frame.Stack.Placeholder)
	assert.Equal(t, "", frame.Editing)
	assert.Nil(t, frame.Focus)
	assert.Equal(t, []string{"Buy milk"}, titlesOf(h.persisted(t)))
}

func TestOnlyDoneTasksStoredGetsPlaceholderWithoutWrite(t *testing.T) {
	stored := `[{"id":"X","title":"X","createdAt":"2025-01-01T00:00:00.000Z","done":true,"doneAt":"2025-01-02T00:00:00.000Z"}]`
	h := newHarness(t, stored)

	frame := h.engine.Frame()
	require.Len(t, frame.Stack.Active, 1)
	assert.True(t, frame.Stack.Placeholder)
	assert.Len(t, h.persisted(t), 1, "not written until the next mutation")
}

func TestDeleteOnlyActiveTask(t *testing.T) {
	h := newHarness(t, `[{"id":"A","title":"A","createdAt":"2025-01-01T00:00:00.000Z","done":false}]`)

	require.NoError(t, h.engine.Delete("A"))

	frame := h.engine.Frame()
	require.Len(t, frame.Stack.Active, 1)
	assert.NotEqual(t, "A", frame.Stack.Active[0].ID)
	assert.Equal(t, frame.Stack.Active[0].ID, frame.Editing)
	assert.Len(t, h.persisted(t), 1)
}

func TestDeleteWhileEditingClearsSession(t *testing.T) {
	h := newHarness(t, abc)
	h.engine.BeginEditAt("B", 1)

	require.NoError(t, h.engine.Delete("B"))

	frame := h.engine.Frame()
	assert.Equal(t, "", frame.Editing)
	assert.Nil(t, frame.Focus)
}

func TestReorderScenarios(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"B", "C", "A"}},
		{"last to first", 2, 0, []string{"C", "A", "B"}},
		{"same slot", 1, 1, []string{"A", "B", "C"}},
		{"out of range", 0, 5, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, abc)
			require.NoError(t, h.engine.Reorder(tt.from, tt.to))
			assert.Equal(t, tt.want, titlesOf(h.engine.Tasks()))
			assert.Equal(t, tt.want, titlesOf(h.persisted(t)))
		})
	}
}

func TestDoneViewOrderAndDeleteFocused(t *testing.T) {
	h := newHarness(t, abc)

	require.NoError(t, h.engine.SetDone("A", true))
	h.tick()
	require.NoError(t, h.engine.SetDone("C", true))

	frame := h.engine.Frame()
	assert.Equal(t, []string{"C", "A"}, titlesOf(frame.Stack.Done))
	assert.Equal(t, []string{"B"}, titlesOf(frame.Stack.Active))

	h.engine.SwitchView(view.Done)
	require.NoError(t, h.engine.DeleteFocused())
	assert.Equal(t, []string{"A", "B"}, titlesOf(h.engine.Tasks()))

	h.engine.SwitchView(view.Main)
	require.NoError(t, h.engine.DeleteFocused())
	assert.Equal(t, []string{"", "A"}, titlesOf(h.engine.Tasks()), "deleting the last active task leaves a placeholder")
}

func TestCompleteTop(t *testing.T) {
	h := newHarness(t, abc)

	require.NoError(t, h.engine.CompleteTop())

	frame := h.engine.Frame()
	assert.Equal(t, "B", frame.Stack.Top.Title)
	require.Len(t, frame.Stack.Done, 1)
	require.NotNil(t, frame.Stack.Done[0].DoneAt)
	assert.Equal(t, h.clock, *frame.Stack.Done[0].DoneAt)
}

func TestAddWithEdit(t *testing.T) {
	h := newHarness(t, abc)

	id, err := h.engine.Add("", true)
	require.NoError(t, err)

	frame := h.engine.Frame()
	assert.Equal(t, id, frame.Stack.Top.ID)
	assert.Equal(t, id, frame.Editing)

	id2, err := h.engine.Add("from cli", false)
	require.NoError(t, err)
	assert.Equal(t, id, h.engine.Editing(), "adding without edit leaves the session alone")
	got, _ := h.engine.stack.Get(id2)
	assert.Equal(t, "from cli", got.Title)
}

func TestClickToEditPlacesCaretOnce(t *testing.T) {
	h := newHarness(t, abc)

	h.engine.BeginEditAt("A", 99)
	frame := h.engine.Frame()
	require.NotNil(t, frame.Focus)
	assert.Equal(t, session.FocusRequest{ID: "A", Offset: 1}, *frame.Focus, "offset clamps to title length")

	frame = h.engine.Frame()
	require.NotNil(t, frame.Focus)
	assert.Equal(t, 1, frame.Focus.Offset)

	h.engine.BeginEdit("missing")
	assert.Equal(t, "A", h.engine.Editing())
}

func TestEndEditWithStaleID(t *testing.T) {
	h := newHarness(t, abc)
	h.engine.BeginEdit("A")

	require.NoError(t, h.engine.EndEdit("B", "renamed"))

	assert.Equal(t, "", h.engine.Editing())
	assert.Equal(t, []string{"A", "B", "C"}, titlesOf(h.engine.Tasks()))
}

func TestImportIsGated(t *testing.T) {
	h := newHarness(t, abc)

	_, err := h.engine.ProposeImport(`[{"title":"x"}]`)
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrMissingField)
	var ie *snapshot.ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, []string{"A", "B", "C"}, titlesOf(h.persisted(t)))

	p, err := h.engine.ProposeImport(`[{"id":"n","title":"new","createdAt":"2025-01-01"}]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titlesOf(h.engine.Tasks()), "proposal leaves the stack alone")

	require.NoError(t, h.engine.Commit(p))
	assert.Equal(t, []string{"new"}, titlesOf(h.persisted(t)))
	assert.ErrorIs(t, h.engine.Commit(p), ErrPendingUsed)
}

func TestDiscardedPendingCannotCommit(t *testing.T) {
	h := newHarness(t, abc)
	p := h.engine.ProposeClear()
	p.Discard()

	assert.ErrorIs(t, h.engine.Commit(p), ErrPendingUsed)
	assert.Len(t, h.engine.Tasks(), 3)

	other := newHarness(t, abc)
	assert.ErrorIs(t, other.engine.Commit(h.engine.ProposeClear()), ErrPendingUsed)
}

func TestClearLeavesEditablePlaceholder(t *testing.T) {
	h := newHarness(t, abc)

	require.NoError(t, h.engine.Commit(h.engine.ProposeClear()))

	frame := h.engine.Frame()
	require.Len(t, frame.Stack.Active, 1)
	assert.True(t, frame.Stack.Placeholder)
	assert.Equal(t, frame.Stack.Active[0].ID, frame.Editing)
	assert.Len(t, h.persisted(t), 1)
}

func TestExportRoundTrip(t *testing.T) {
	h := newHarness(t, abc)
	require.NoError(t, h.engine.SetDone("B", true))

	data, err := h.engine.Export()
	require.NoError(t, err)

	tasks, err := snapshot.Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, h.engine.Tasks(), tasks)
}

func TestSaveErrorIsVisibleUntilNextWrite(t *testing.T) {
	h := newHarness(t, abc)
	h.slot.FailWrites = errors.New("quota exceeded")

	err := h.engine.SetDone("A", true)
	require.Error(t, err)
	var werr *storage.WriteError
	require.ErrorAs(t, err, &werr)

	frame := h.engine.Frame()
	assert.Error(t, frame.SaveErr)
	assert.Len(t, frame.Stack.Done, 1, "memory stays authoritative")

	require.NoError(t, h.engine.Delete("missing"))
	assert.Error(t, h.engine.Frame().SaveErr, "no-op does not clear the signal")

	h.slot.FailWrites = nil
	require.NoError(t, h.engine.SetDone("B", true))
	assert.NoError(t, h.engine.Frame().SaveErr)
	assert.Len(t, h.persisted(t), 3)
}

func TestReload(t *testing.T) {
	h := newHarness(t, abc)
	require.NoError(t, h.slot.Set(models.DefaultStorageKey, []byte(`[{"id":"Z","title":"Z","createdAt":"2025-01-01T00:00:00.000Z","done":false}]`)))

	require.NoError(t, h.engine.Reload())
	assert.Equal(t, []string{"Z"}, titlesOf(h.engine.Tasks()))
}

func TestReloadKeepsUnsavedMemory(t *testing.T) {
	h := newHarness(t, abc)
	h.slot.FailWrites = errors.New("disk full")
	require.Error(t, h.engine.SetDone("A", true))

	require.NoError(t, h.engine.Reload())
	assert.Len(t, h.engine.Frame().Stack.Done, 1, "a failed save is not rolled back")

	h.slot.FailWrites = nil
	require.NoError(t, h.engine.SetDone("B", true))
	require.NoError(t, h.slot.Set(models.DefaultStorageKey, []byte(`[{"id":"Z","title":"Z","createdAt":"2025-01-01T00:00:00.000Z","done":false}]`)))
	require.NoError(t, h.engine.Reload())
	assert.Equal(t, []string{"Z"}, titlesOf(h.engine.Tasks()))
}

func TestUnreadableStoreIsNotOverwritten(t *testing.T) {
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Set(models.DefaultStorageKey, []byte(abc)))
	slot.FailReads = errors.New("database is locked")

	_, err := New(storage.NewAdapter(slot, "", nil))
	var rerr *storage.ReadError
	require.ErrorAs(t, err, &rerr)

	slot.FailReads = nil
	h := &harness{store: storage.NewAdapter(slot, "", nil)}
	assert.Equal(t, []string{"A", "B", "C"}, titlesOf(h.persisted(t)))
}

func TestReloadSurfacesReadError(t *testing.T) {
	h := newHarness(t, abc)
	h.slot.FailReads = errors.New("permission denied")

	require.Error(t, h.engine.Reload())
	assert.Equal(t, []string{"A", "B", "C"}, titlesOf(h.engine.Tasks()))
}
