package board

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Mutation names, as used in command envelopes.
const (
	NameAddTask             = "addTask"
	NameUpdateTask          = "updateTask"
	NameDeleteTask          = "deleteTask"
	NameMoveTask            = "moveTask"
	NameMoveToNextStage     = "moveToNextStage"
	NameMoveToSpecificStage = "moveToSpecificStage"
)

// Mutation is a named state transition with a flat payload.
type Mutation interface {
	Name() string
	Apply(b types.Board, p types.Pipeline) (types.Board, error)
}

// AddTask creates a task at the end of the first stage. When ID is empty a
// fresh one is generated.
type AddTask struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (AddTask) Name() string { return NameAddTask }

// Apply rejects a blank title with ErrInvalidTitle and a reused ID with
// ErrDuplicateID.
func (m AddTask) Apply(b types.Board, p types.Pipeline) (types.Board, error) {
	if strings.TrimSpace(m.Title) == "" {
		return b, types.ErrInvalidTitle
	}
	first := p.First()
	if _, ok := b.Columns[first]; !ok {
		return b, fmt.Errorf("%w: %q", types.ErrColumnNotFound, first)
	}
	id := m.ID
	if id == "" {
		id = NewTaskID()
	}
	if _, exists := b.Tasks[id]; exists {
		return b, fmt.Errorf("%w: %q", types.ErrDuplicateID, id)
	}

	next := b.Clone()
	next.Tasks[id] = types.Task{ID: id, Title: m.Title, Description: m.Description}
	col := next.Columns[first]
	col.TaskIDs = append(col.TaskIDs, id)
	next.Columns[first] = col
	return next, nil
}

// UpdateTask replaces the provided fields of a task. A nil or blank Title
// keeps the previous title; a nil Description keeps the previous
// description.
type UpdateTask struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (UpdateTask) Name() string { return NameUpdateTask }

func (m UpdateTask) Apply(b types.Board, _ types.Pipeline) (types.Board, error) {
	task, ok := b.Tasks[m.ID]
	if !ok {
		return b, fmt.Errorf("%w: %q", types.ErrNotFound, m.ID)
	}
	if m.Title != nil && strings.TrimSpace(*m.Title) != "" {
		task.Title = *m.Title
	}
	if m.Description != nil {
		task.Description = *m.Description
	}

	next := b.Clone()
	next.Tasks[m.ID] = task
	return next, nil
}

// DeleteTask removes a task from its column and from the board.
type DeleteTask struct {
	ID string `json:"id"`
}

func (DeleteTask) Name() string { return NameDeleteTask }

func (m DeleteTask) Apply(b types.Board, _ types.Pipeline) (types.Board, error) {
	if _, ok := b.Tasks[m.ID]; !ok {
		return b, fmt.Errorf("%w: %q", types.ErrNotFound, m.ID)
	}

	next := b.Clone()
	for colID, col := range next.Columns {
		if i := indexOf(col.TaskIDs, m.ID); i >= 0 {
			col.TaskIDs = removeAt(col.TaskIDs, i)
			next.Columns[colID] = col
		}
	}
	delete(next.Tasks, m.ID)
	return next, nil
}

// MoveTask moves a task to a position in a column; source and destination
// may be the same column. The task's current position is looked up from
// TaskID, so a stale SourceIndex cannot move the wrong task. DestinationIndex
// is clamped to the destination list.
type MoveTask struct {
	TaskID              string `json:"taskId"`
	SourceColumnID      string `json:"sourceColumnId"`
	DestinationColumnID string `json:"destinationColumnId"`
	SourceIndex         int    `json:"sourceIndex"`
	DestinationIndex    int    `json:"destinationIndex"`
}

func (MoveTask) Name() string { return NameMoveTask }

// Apply returns ErrNoop when the task would end up where it already is.
func (m MoveTask) Apply(b types.Board, _ types.Pipeline) (types.Board, error) {
	src, ok := b.Columns[m.SourceColumnID]
	if !ok {
		return b, fmt.Errorf("%w: %q", types.ErrColumnNotFound, m.SourceColumnID)
	}
	if _, ok := b.Columns[m.DestinationColumnID]; !ok {
		return b, fmt.Errorf("%w: %q", types.ErrColumnNotFound, m.DestinationColumnID)
	}
	from := indexOf(src.TaskIDs, m.TaskID)
	if from < 0 {
		return b, fmt.Errorf("%w: %q in %q", types.ErrNotFound, m.TaskID, m.SourceColumnID)
	}

	remaining := removeAt(src.TaskIDs, from)
	sameColumn := m.SourceColumnID == m.DestinationColumnID
	dst := remaining
	if !sameColumn {
		dst = b.Columns[m.DestinationColumnID].TaskIDs
	}
	to := clamp(m.DestinationIndex, 0, len(dst))
	if sameColumn && to == from {
		return b, types.ErrNoop
	}

	next := b.Clone()
	if !sameColumn {
		srcCol := next.Columns[m.SourceColumnID]
		srcCol.TaskIDs = remaining
		next.Columns[m.SourceColumnID] = srcCol
	}
	dstCol := next.Columns[m.DestinationColumnID]
	dstCol.TaskIDs = insertAt(dst, to, m.TaskID)
	next.Columns[m.DestinationColumnID] = dstCol
	return next, nil
}

// MoveToNextStage advances a task to the successor of its current stage and
// appends it there.
type MoveToNextStage struct {
	TaskID          string `json:"taskId"`
	CurrentColumnID string `json:"currentColumnId"`
}

func (MoveToNextStage) Name() string { return NameMoveToNextStage }

func (m MoveToNextStage) Apply(b types.Board, p types.Pipeline) (types.Board, error) {
	if _, ok := b.Columns[m.CurrentColumnID]; !ok {
		return b, fmt.Errorf("%w: %q", types.ErrColumnNotFound, m.CurrentColumnID)
	}
	target, ok := p.Next(m.CurrentColumnID)
	if !ok {
		return b, fmt.Errorf("%w: %q has no next stage", types.ErrInvalidTransition, m.CurrentColumnID)
	}
	return appendTo(b, m.TaskID, m.CurrentColumnID, target)
}

// MoveToSpecificStage moves a task from its current stage to any other stage
// and appends it there.
type MoveToSpecificStage struct {
	TaskID          string `json:"taskId"`
	CurrentColumnID string `json:"currentColumnId"`
	TargetColumnID  string `json:"targetColumnId"`
}

func (MoveToSpecificStage) Name() string { return NameMoveToSpecificStage }

func (m MoveToSpecificStage) Apply(b types.Board, _ types.Pipeline) (types.Board, error) {
	if _, ok := b.Columns[m.CurrentColumnID]; !ok {
		return b, fmt.Errorf("%w: %q", types.ErrColumnNotFound, m.CurrentColumnID)
	}
	if _, ok := b.Columns[m.TargetColumnID]; !ok {
		return b, fmt.Errorf("%w: %q", types.ErrColumnNotFound, m.TargetColumnID)
	}
	if m.TargetColumnID == m.CurrentColumnID {
		return b, fmt.Errorf("%w: task already in %q", types.ErrInvalidTransition, m.CurrentColumnID)
	}
	return appendTo(b, m.TaskID, m.CurrentColumnID, m.TargetColumnID)
}

// appendTo moves taskID out of column from and onto the end of column to.
// Both columns must exist.
func appendTo(b types.Board, taskID, from, to string) (types.Board, error) {
	i := indexOf(b.Columns[from].TaskIDs, taskID)
	if i < 0 {
		return b, fmt.Errorf("%w: %q in %q", types.ErrNotFound, taskID, from)
	}

	next := b.Clone()
	src := next.Columns[from]
	src.TaskIDs = removeAt(src.TaskIDs, i)
	next.Columns[from] = src
	dst := next.Columns[to]
	dst.TaskIDs = append(dst.TaskIDs, taskID)
	next.Columns[to] = dst
	return next, nil
}
