package stack

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topstack/topstack/internal/models"
)

type fakeStore struct {
	saves int
	last  []models.Task
	err   error
}

func (f *fakeStore) Save(tasks []models.Task) error {
	f.saves++
	f.last = tasks
	return f.err
}

type fixture struct {
	stack *Stack
	store *fakeStore
	clock time.Time
}

func newFixture(t *testing.T, initial ...models.Task) *fixture {
	t.Helper()
	f := &fixture{store: &fakeStore{}, clock: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	n := 0
	f.stack = New(f.store, initial,
		WithClock(func() time.Time { return f.clock }),
		WithIDs(func() string { n++; return fmt.Sprintf("id%d", n) }),
	)
	return f
}

func (f *fixture) tick() { f.clock = f.clock.Add(time.Minute) }

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func active(title string) models.Task {
	return models.NewTask(title, title, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func done(title string) models.Task {
	t := active(title)
	t.SetDone(true, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	return t
}

func TestAddInsertsAtFront(t *testing.T) {
	f := newFixture(t, active("A"))

	id, err := f.stack.Add("Buy milk")
	require.NoError(t, err)

	assert.Equal(t, []string{"Buy milk", "A"}, titles(f.stack.Tasks()))
	got, ok := f.stack.Get(id)
	require.True(t, ok)
	assert.False(t, got.Done)
	assert.Nil(t, got.DoneAt)
	assert.Equal(t, f.clock, got.CreatedAt)
	assert.Equal(t, 1, f.store.saves)
}

func TestAddSkipsTakenIDs(t *testing.T) {
	store := &fakeStore{}
	ids := []string{"a", "a", "b"}
	s := New(store, []models.Task{active("a")}, WithIDs(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	id, err := s.Add("x")
	require.NoError(t, err)
	assert.Equal(t, "b", id)
}

func TestDeleteOnlyActiveTaskSynthesizesPlaceholder(t *testing.T) {
	f := newFixture(t, active("A"), done("D"))
	var hooked []string
	f.stack.onPlaceholder = func(id string) { hooked = append(hooked, id) }

	require.NoError(t, f.stack.Delete("A"))

	tasks := f.stack.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "", tasks[0].Title)
	assert.False(t, tasks[0].Done)
	assert.Equal(t, "D", tasks[1].Title)
	assert.Equal(t, []string{tasks[0].ID}, hooked)
	assert.Equal(t, 1, f.store.saves)
	assert.Equal(t, tasks, f.store.last)
}

func TestAbsentIDsAreNoOps(t *testing.T) {
	f := newFixture(t, active("A"))

	require.NoError(t, f.stack.Delete("missing"))
	require.NoError(t, f.stack.SetDone("missing", true))
	require.NoError(t, f.stack.Rename("missing", "x"))

	assert.Equal(t, 0, f.store.saves)
	assert.Equal(t, []string{"A"}, titles(f.stack.Tasks()))
}

func TestSetDoneStampsAndClears(t *testing.T) {
	f := newFixture(t, active("A"), active("B"))

	require.NoError(t, f.stack.SetDone("A", true))
	a, _ := f.stack.Get("A")
	require.NotNil(t, a.DoneAt)
	first := *a.DoneAt

	f.tick()
	require.NoError(t, f.stack.SetDone("A", true))
	a, _ = f.stack.Get("A")
	assert.Equal(t, first, *a.DoneAt, "re-confirming keeps the first completion time")

	require.NoError(t, f.stack.SetDone("A", false))
	a, _ = f.stack.Get("A")
	assert.False(t, a.Done)
	assert.Nil(t, a.DoneAt)
	assert.Equal(t, 3, f.store.saves)
}

func TestCompletingLastActiveTaskSynthesizesPlaceholder(t *testing.T) {
	f := newFixture(t, active("A"))

	require.NoError(t, f.stack.SetDone("A", true))

	tasks := f.stack.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "", tasks[0].Title)
	assert.False(t, tasks[0].Done)
	assert.True(t, tasks[1].Done)
}

func TestRenameTrims(t *testing.T) {
	f := newFixture(t, active("A"))

	require.NoError(t, f.stack.Rename("A", "  walk the dog \n"))
	a, _ := f.stack.Get("A")
	assert.Equal(t, "walk the dog", a.Title)

	require.NoError(t, f.stack.Rename("A", "   "))
	a, _ = f.stack.Get("A")
	assert.Equal(t, "", a.Title)
	assert.Equal(t, 2, f.store.saves)
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name      string
		initial   []models.Task
		from, to  int
		want      []string
		wantSaves int
	}{
		{
			name:      "move first after last",
			initial:   []models.Task{active("A"), active("B"), active("C")},
			from:      0,
			to:        2,
			want:      []string{"B", "C", "A"},
			wantSaves: 1,
		},
		{
			name:      "move last to front",
			initial:   []models.Task{active("A"), active("B"), active("C")},
			from:      2,
			to:        0,
			want:      []string{"C", "A", "B"},
			wantSaves: 1,
		},
		{
			name:      "same index",
			initial:   []models.Task{active("A"), active("B"), active("C")},
			from:      1,
			to:        1,
			want:      []string{"A", "B", "C"},
			wantSaves: 0,
		},
		{
			name:      "out of range",
			initial:   []models.Task{active("A"), active("B"), active("C")},
			from:      0,
			to:        3,
			want:      []string{"A", "B", "C"},
			wantSaves: 0,
		},
		{
			name:      "negative",
			initial:   []models.Task{active("A"), active("B")},
			from:      -1,
			to:        0,
			want:      []string{"A", "B"},
			wantSaves: 0,
		},
		{
			name:      "done tasks keep their absolute slots",
			initial:   []models.Task{active("A"), done("X"), active("B"), active("C")},
			from:      0,
			to:        2,
			want:      []string{"X", "B", "C", "A"},
			wantSaves: 1,
		},
		{
			name:      "indexes count active tasks only",
			initial:   []models.Task{done("X"), active("A"), done("Y"), active("B")},
			from:      1,
			to:        0,
			want:      []string{"X", "B", "A", "Y"},
			wantSaves: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.initial...)
			require.NoError(t, f.stack.Reorder(tt.from, tt.to))
			assert.Equal(t, tt.want, titles(f.stack.Tasks()))
			assert.Equal(t, tt.wantSaves, f.store.saves)
		})
	}
}

func TestReplace(t *testing.T) {
	f := newFixture(t, active("A"))

	require.NoError(t, f.stack.Replace([]models.Task{done("X"), active("B"), active("B")}))
	assert.Equal(t, []string{"X", "B"}, titles(f.stack.Tasks()))

	require.NoError(t, f.stack.Replace(nil))
	tasks := f.stack.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "", tasks[0].Title)
	assert.Equal(t, 2, f.store.saves)
}

func TestEnsureActive(t *testing.T) {
	f := newFixture(t)

	id, created := f.stack.EnsureActive()
	assert.True(t, created)
	assert.Equal(t, "id1", id)

	_, created = f.stack.EnsureActive()
	assert.False(t, created)
	assert.Equal(t, 1, f.stack.Len())
	assert.Equal(t, 0, f.store.saves, "EnsureActive alone does not persist")
}

func TestWriteErrorIsReturnedAfterMutation(t *testing.T) {
	f := newFixture(t, active("A"))
	f.store.err = errors.New("disk full")

	_, err := f.stack.Add("B")
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, []string{"B", "A"}, titles(f.stack.Tasks()), "memory stays authoritative")
}

func TestTasksReturnsCopies(t *testing.T) {
	f := newFixture(t, done("X"), active("A"))

	tasks := f.stack.Tasks()
	tasks[0].Title = "mutated"
	*tasks[0].DoneAt = time.Time{}

	x, _ := f.stack.Get("X")
	assert.Equal(t, "X", x.Title)
	assert.False(t, x.DoneAt.IsZero())
}

func TestRandomMutationsKeepAnActiveTask(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, 0))
			f := newFixture(t)
			f.stack.EnsureActive()
			require.NoError(t, f.stack.Save())

			pick := func() string {
				tasks := f.stack.Tasks()
				if rng.IntN(8) == 0 {
					return "missing"
				}
				return tasks[rng.IntN(len(tasks))].ID
			}

			for step := 0; step < 200; step++ {
				f.tick()
				var op string
				switch rng.IntN(7) {
				case 0:
					op = "add"
					_, _ = f.stack.Add(fmt.Sprintf("task %d", step))
				case 1:
					op = "delete"
					_ = f.stack.Delete(pick())
				case 2:
					op = "complete"
					_ = f.stack.SetDone(pick(), true)
				case 3:
					op = "reopen"
					_ = f.stack.SetDone(pick(), false)
				case 4:
					op = "rename"
					_ = f.stack.Rename(pick(), []string{"", "  ", "renamed"}[rng.IntN(3)])
				case 5:
					op = "reorder"
					n := f.stack.Len() + 1
					_ = f.stack.Reorder(rng.IntN(n)-1, rng.IntN(n)-1)
				case 6:
					op = "replace"
					tasks := f.stack.Tasks()
					keep := tasks[:rng.IntN(len(tasks)+1)]
					if rng.IntN(2) == 0 {
						keep = append(keep, done(fmt.Sprintf("imported %d", step)))
					}
					_ = f.stack.Replace(keep)
				}

				tasks := f.stack.Tasks()
				ids := map[string]bool{}
				activeCount := 0
				for _, task := range tasks {
					require.False(t, ids[task.ID], "step %d (%s): duplicate id %s", step, op, task.ID)
					ids[task.ID] = true
					if !task.Done {
						activeCount++
					}
				}
				require.GreaterOrEqual(t, activeCount, 1, "step %d (%s): no active task", step, op)
				assert.Equal(t, tasks, f.store.last, "step %d (%s): persisted stack differs", step, op)
			}
		})
	}
}
