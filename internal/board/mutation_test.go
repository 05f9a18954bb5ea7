package board

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func strPtr(s string) *string { return &s }

// seed builds a board with the given task IDs placed in the given columns.
func seed(t *testing.T, placement map[string][]string) types.Board {
	t.Helper()
	p := types.DefaultPipeline()
	b := p.InitialBoard()
	for _, colID := range p.IDs() {
		for _, id := range placement[colID] {
			b.Tasks[id] = types.Task{ID: id, Title: "title " + id, Description: "about " + id}
			col := b.Columns[colID]
			col.TaskIDs = append(col.TaskIDs, id)
			b.Columns[colID] = col
		}
	}
	require.NoError(t, Validate(b, p))
	return b
}

func TestAddTask_BuyMilk(t *testing.T) {
	p := types.DefaultPipeline()
	b := p.InitialBoard()
	b.Tasks["task-existing"] = types.Task{ID: "task-existing", Title: "old"}
	col := b.Columns[types.StageDone]
	col.TaskIDs = []string{"task-existing"}
	b.Columns[types.StageDone] = col

	next, err := AddTask{Title: "Buy milk", Description: "2%"}.Apply(b, p)
	require.NoError(t, err)

	todo := next.Columns[types.StageTodo].TaskIDs
	require.Len(t, todo, 1)
	id := todo[0]
	assert.NotEqual(t, "task-existing", id)
	assert.Contains(t, id, taskIDPrefix)
	assert.Equal(t, types.Task{ID: id, Title: "Buy milk", Description: "2%"}, next.Tasks[id])
	assert.Equal(t, b.Len()+1, next.Len())

	// prior board untouched
	assert.Empty(t, b.Columns[types.StageTodo].TaskIDs)
	assert.Equal(t, 1, b.Len())
	assert.NoError(t, Validate(next, p))
}

func TestAddTask_AppendsToEnd(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{types.StageTodo: {"task-a"}})

	next, err := AddTask{ID: "task-b", Title: "second"}.Apply(b, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-a", "task-b"}, next.Columns[types.StageTodo].TaskIDs)
}

func TestAddTask_Rejections(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{types.StageTodo: {"task-a"}})

	tests := []struct {
		name    string
		m       AddTask
		wantErr error
	}{
		{name: "empty title", m: AddTask{Title: ""}, wantErr: types.ErrInvalidTitle},
		{name: "blank title", m: AddTask{Title: "   \t"}, wantErr: types.ErrInvalidTitle},
		{name: "duplicate id", m: AddTask{ID: "task-a", Title: "again"}, wantErr: types.ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.m.Apply(b, p)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, b, next)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{types.StageReview: {"task-a"}})

	t.Run("replaces provided fields", func(t *testing.T) {
		next, err := UpdateTask{ID: "task-a", Title: strPtr("new"), Description: strPtr("desc")}.Apply(b, p)
		require.NoError(t, err)
		assert.Equal(t, types.Task{ID: "task-a", Title: "new", Description: "desc"}, next.Tasks["task-a"])
		assert.Equal(t, b.Columns, next.Columns)
	})

	t.Run("blank title keeps previous", func(t *testing.T) {
		next, err := UpdateTask{ID: "task-a", Title: strPtr("  "), Description: strPtr("d2")}.Apply(b, p)
		require.NoError(t, err)
		assert.Equal(t, "title task-a", next.Tasks["task-a"].Title)
		assert.Equal(t, "d2", next.Tasks["task-a"].Description)
	})

	t.Run("omitted fields keep previous", func(t *testing.T) {
		next, err := UpdateTask{ID: "task-a"}.Apply(b, p)
		require.NoError(t, err)
		assert.Equal(t, b.Tasks["task-a"], next.Tasks["task-a"])
	})

	t.Run("empty description clears it", func(t *testing.T) {
		next, err := UpdateTask{ID: "task-a", Description: strPtr("")}.Apply(b, p)
		require.NoError(t, err)
		assert.Equal(t, "", next.Tasks["task-a"].Description)
	})

	t.Run("unknown id", func(t *testing.T) {
		next, err := UpdateTask{ID: "task-missing", Title: strPtr("x")}.Apply(b, p)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.Equal(t, b, next)
	})
}

func TestDeleteTask_FromPeerReview(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{
		types.StageTodo:   {"task-a"},
		types.StageReview: {"task-b", "task-c"},
	})

	next, err := DeleteTask{ID: "task-b"}.Apply(b, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-c"}, next.Columns[types.StageReview].TaskIDs)
	assert.NotContains(t, next.Tasks, "task-b")
	assert.Equal(t, b.Len()-1, next.Len())
	assert.NoError(t, Validate(next, p))

	again, err := DeleteTask{ID: "task-b"}.Apply(next, p)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.Equal(t, next, again)
}

func TestMoveTask(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{
		types.StageTodo:       {"task-a", "task-b", "task-c"},
		types.StageInProgress: {"task-d"},
	})

	tests := []struct {
		name     string
		m        MoveTask
		wantTodo []string
		wantProg []string
		wantErr  error
	}{
		{
			name:     "reorder down within column",
			m:        MoveTask{TaskID: "task-a", SourceColumnID: types.StageTodo, DestinationColumnID: types.StageTodo, SourceIndex: 0, DestinationIndex: 2},
			wantTodo: []string{"task-b", "task-c", "task-a"},
			wantProg: []string{"task-d"},
		},
		{
			name:     "reorder up within column",
			m:        MoveTask{TaskID: "task-c", SourceColumnID: types.StageTodo, DestinationColumnID: types.StageTodo, SourceIndex: 2, DestinationIndex: 0},
			wantTodo: []string{"task-c", "task-a", "task-b"},
			wantProg: []string{"task-d"},
		},
		{
			name:     "across columns at front",
			m:        MoveTask{TaskID: "task-b", SourceColumnID: types.StageTodo, DestinationColumnID: types.StageInProgress, SourceIndex: 1, DestinationIndex: 0},
			wantTodo: []string{"task-a", "task-c"},
			wantProg: []string{"task-b", "task-d"},
		},
		{
			name:     "stale source index is re-derived",
			m:        MoveTask{TaskID: "task-c", SourceColumnID: types.StageTodo, DestinationColumnID: types.StageInProgress, SourceIndex: 0, DestinationIndex: 1},
			wantTodo: []string{"task-a", "task-b"},
			wantProg: []string{"task-d", "task-c"},
		},
		{
			name:     "destination index past end is clamped",
			m:        MoveTask{TaskID: "task-a", SourceColumnID: types.StageTodo, DestinationColumnID: types.StageInProgress, DestinationIndex: 99},
			wantTodo: []string{"task-b", "task-c"},
			wantProg: []string{"task-d", "task-a"},
		},
		{
			name:     "negative destination index is clamped",
			m:        MoveTask{TaskID: "task-d", SourceColumnID: types.StageInProgress, DestinationColumnID: types.StageTodo, DestinationIndex: -4},
			wantTodo: []string{"task-d", "task-a", "task-b", "task-c"},
			wantProg: []string{},
		},
		{
			name:    "task not in source column",
			m:       MoveTask{TaskID: "task-d", SourceColumnID: types.StageTodo, DestinationColumnID: types.StageDone},
			wantErr: types.ErrNotFound,
		},
		{
			name:    "unknown source column",
			m:       MoveTask{TaskID: "task-a", SourceColumnID: "column-9", DestinationColumnID: types.StageDone},
			wantErr: types.ErrColumnNotFound,
		},
		{
			name:    "unknown destination column",
			m:       MoveTask{TaskID: "task-a", SourceColumnID: types.StageTodo, DestinationColumnID: "column-9"},
			wantErr: types.ErrColumnNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.m.Apply(b, p)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, b, next)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTodo, next.Columns[types.StageTodo].TaskIDs)
			assert.Equal(t, tt.wantProg, next.Columns[types.StageInProgress].TaskIDs)
			assert.Equal(t, b.Len(), next.Len())
			assert.NoError(t, Validate(next, p))
		})
	}
}

func TestMoveTask_IdentityIsNoop(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{types.StageTodo: {"task-a", "task-b"}})

	for i, id := range []string{"task-a", "task-b"} {
		next, err := MoveTask{
			TaskID:              id,
			SourceColumnID:      types.StageTodo,
			DestinationColumnID: types.StageTodo,
			SourceIndex:         i,
			DestinationIndex:    i,
		}.Apply(b, p)
		assert.True(t, errors.Is(err, types.ErrNoop))
		assert.Equal(t, b, next)
	}
}

func TestMoveToNextStage_WalksPipeline(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{
		types.StageTodo:       {"task-a"},
		types.StageInProgress: {"task-x"},
	})

	next, err := MoveToNextStage{TaskID: "task-a", CurrentColumnID: types.StageTodo}.Apply(b, p)
	require.NoError(t, err)
	assert.Empty(t, next.Columns[types.StageTodo].TaskIDs)
	assert.Equal(t, []string{"task-x", "task-a"}, next.Columns[types.StageInProgress].TaskIDs)

	cur := next
	for _, want := range []string{types.StageReview, types.StageDone} {
		from, ok := ColumnOf(cur, "task-a")
		require.True(t, ok)
		cur, err = MoveToNextStage{TaskID: "task-a", CurrentColumnID: from}.Apply(cur, p)
		require.NoError(t, err)
		got, _ := ColumnOf(cur, "task-a")
		assert.Equal(t, want, got)
	}

	done, err := MoveToNextStage{TaskID: "task-a", CurrentColumnID: types.StageDone}.Apply(cur, p)
	assert.True(t, errors.Is(err, types.ErrInvalidTransition))
	assert.Equal(t, cur, done)
}

func TestMoveToNextStage_Rejections(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{types.StageTodo: {"task-a"}})

	_, err := MoveToNextStage{TaskID: "task-a", CurrentColumnID: types.StageInProgress}.Apply(b, p)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	_, err = MoveToNextStage{TaskID: "task-a", CurrentColumnID: "column-9"}.Apply(b, p)
	assert.True(t, errors.Is(err, types.ErrColumnNotFound))
}

func TestMoveToSpecificStage_Recycle(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{
		types.StageTodo: {"task-a"},
		types.StageDone: {"task-z"},
	})

	next, err := MoveToSpecificStage{TaskID: "task-z", CurrentColumnID: types.StageDone, TargetColumnID: types.StageTodo}.Apply(b, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-a", "task-z"}, next.Columns[types.StageTodo].TaskIDs)
	assert.Empty(t, next.Columns[types.StageDone].TaskIDs)
}

func TestMoveToSpecificStage_Rejections(t *testing.T) {
	p := types.DefaultPipeline()
	b := seed(t, map[string][]string{types.StageTodo: {"task-a"}})

	tests := []struct {
		name    string
		m       MoveToSpecificStage
		wantErr error
	}{
		{name: "same column", m: MoveToSpecificStage{TaskID: "task-a", CurrentColumnID: types.StageTodo, TargetColumnID: types.StageTodo}, wantErr: types.ErrInvalidTransition},
		{name: "unknown current", m: MoveToSpecificStage{TaskID: "task-a", CurrentColumnID: "nope", TargetColumnID: types.StageTodo}, wantErr: types.ErrColumnNotFound},
		{name: "unknown target", m: MoveToSpecificStage{TaskID: "task-a", CurrentColumnID: types.StageTodo, TargetColumnID: "nope"}, wantErr: types.ErrColumnNotFound},
		{name: "task not in current", m: MoveToSpecificStage{TaskID: "task-a", CurrentColumnID: types.StageDone, TargetColumnID: types.StageTodo}, wantErr: types.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.m.Apply(b, p)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, b, next)
		})
	}
}

func TestCustomPipeline(t *testing.T) {
	p := types.Pipeline{Stages: []types.Stage{
		{ID: "backlog", Title: "Backlog"},
		{ID: "shipped", Title: "Shipped"},
	}}
	b := p.InitialBoard()

	b, err := AddTask{ID: "task-1", Title: "ship it"}.Apply(b, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1"}, b.Columns["backlog"].TaskIDs)

	b, err = MoveToNextStage{TaskID: "task-1", CurrentColumnID: "backlog"}.Apply(b, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1"}, b.Columns["shipped"].TaskIDs)

	_, err = MoveToNextStage{TaskID: "task-1", CurrentColumnID: "shipped"}.Apply(b, p)
	assert.True(t, errors.Is(err, types.ErrInvalidTransition))
}

// randomMutation picks a mutation that may or may not be valid for b.
func randomMutation(r *rand.Rand, b types.Board, p types.Pipeline, known []string) Mutation {
	cols := p.IDs()
	col := func() string { return cols[r.Intn(len(cols))] }
	task := func() string {
		if len(known) == 0 || r.Intn(10) == 0 {
			return "task-missing"
		}
		return known[r.Intn(len(known))]
	}
	switch r.Intn(6) {
	case 0:
		return AddTask{Title: "t", Description: "d"}
	case 1:
		return UpdateTask{ID: task(), Title: strPtr("renamed")}
	case 2:
		return DeleteTask{ID: task()}
	case 3:
		id := task()
		src, ok := ColumnOf(b, id)
		if !ok {
			src = col()
		}
		return MoveTask{TaskID: id, SourceColumnID: src, DestinationColumnID: col(), SourceIndex: r.Intn(4), DestinationIndex: r.Intn(6)}
	case 4:
		id := task()
		src, ok := ColumnOf(b, id)
		if !ok {
			src = col()
		}
		return MoveToNextStage{TaskID: id, CurrentColumnID: src}
	default:
		id := task()
		src, ok := ColumnOf(b, id)
		if !ok {
			src = col()
		}
		return MoveToSpecificStage{TaskID: id, CurrentColumnID: src, TargetColumnID: col()}
	}
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	p := types.DefaultPipeline()
	r := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		b := p.InitialBoard()
		var known []string
		for step := 0; step < 200; step++ {
			m := randomMutation(r, b, p, known)
			before := b
			next, err := m.Apply(b, p)

			if err != nil {
				require.Equal(t, before, next, "rejected %s changed the board", m.Name())
				continue
			}
			require.NoError(t, Validate(next, p), "%s broke invariants", m.Name())

			switch mm := m.(type) {
			case AddTask:
				require.Equal(t, before.Len()+1, next.Len())
				for id := range next.Tasks {
					if _, ok := before.Tasks[id]; !ok {
						known = append(known, id)
					}
				}
			case DeleteTask:
				require.Equal(t, before.Len()-1, next.Len())
			case UpdateTask:
				require.Equal(t, before.Len(), next.Len())
				require.Equal(t, mm.ID, next.Tasks[mm.ID].ID)
				wasIn, _ := ColumnOf(before, mm.ID)
				nowIn, _ := ColumnOf(next, mm.ID)
				require.Equal(t, wasIn, nowIn)
			default:
				require.Equal(t, before.Len(), next.Len())
			}
			b = next
		}
	}
}
