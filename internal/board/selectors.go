package board

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// TasksOf returns the tasks of a column in display order.
func TasksOf(b types.Board, columnID string) ([]types.Task, error) {
	col, ok := b.Columns[columnID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrColumnNotFound, columnID)
	}
	tasks := make([]types.Task, 0, len(col.TaskIDs))
	for _, id := range col.TaskIDs {
		if t, ok := b.Tasks[id]; ok {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// Matches reports whether term occurs in the task's title or description,
// ignoring case. An empty term matches every task.
func Matches(t types.Task, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// Search returns the tasks matching term, ordered by column order and then
// by position within the column.
func Search(b types.Board, term string) []types.Task {
	var out []types.Task
	for _, colID := range b.ColumnOrder {
		for _, id := range b.Columns[colID].TaskIDs {
			if t, ok := b.Tasks[id]; ok && Matches(t, term) {
				out = append(out, t)
			}
		}
	}
	return out
}

// ColumnOf returns the ID of the column holding taskID.
func ColumnOf(b types.Board, taskID string) (string, bool) {
	for _, colID := range b.ColumnOrder {
		if indexOf(b.Columns[colID].TaskIDs, taskID) >= 0 {
			return colID, true
		}
	}
	return "", false
}

// Action is the primary button offered on a task in a given stage.
type Action struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// PrimaryAction returns the action for tasks in columnID: advance to the
// next stage, or, from the last stage, send the task back to the first.
func PrimaryAction(p types.Pipeline, columnID string) (Action, bool) {
	stage, ok := p.Stage(columnID)
	if !ok {
		return Action{}, false
	}
	target, ok := p.Next(columnID)
	if !ok {
		target = p.First()
	}
	if target == columnID {
		return Action{}, false
	}
	return Action{Label: stage.Action, Target: target}, true
}

// ColumnView is one column as shown to a user: its tasks filtered by a
// search term, with the count shown in the column header.
type ColumnView struct {
	Column types.Column `json:"column"`
	Tasks  []types.Task `json:"tasks"`
	Count  int          `json:"count"`
	Action *Action      `json:"action,omitempty"`
}

// View returns every column in display order with its tasks filtered by term.
func View(b types.Board, p types.Pipeline, term string) []ColumnView {
	views := make([]ColumnView, 0, len(b.ColumnOrder))
	for _, colID := range b.ColumnOrder {
		col := b.Columns[colID]
		tasks := make([]types.Task, 0, len(col.TaskIDs))
		for _, id := range col.TaskIDs {
			if t, ok := b.Tasks[id]; ok && Matches(t, term) {
				tasks = append(tasks, t)
			}
		}
		v := ColumnView{Column: col, Tasks: tasks, Count: len(tasks)}
		if a, ok := PrimaryAction(p, colID); ok {
			v.Action = &a
		}
		views = append(views, v)
	}
	return views
}
