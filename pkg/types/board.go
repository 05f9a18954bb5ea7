package types

// Task is a single card on the board. The board owns it; exactly one
// column references it by ID.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Column is one pipeline stage holding an ordered list of task IDs.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"taskIds"`
}

// Board is the aggregate root and the unit of persistence.
type Board struct {
	Tasks       map[string]Task   `json:"tasks"`
	Columns     map[string]Column `json:"columns"`
	ColumnOrder []string          `json:"columnOrder"`
}

// Clone returns a deep copy of the board. Mutations work on a clone so the
// prior board is never observed half-changed.
func (b Board) Clone() Board {
	out := Board{
		Tasks:       make(map[string]Task, len(b.Tasks)),
		Columns:     make(map[string]Column, len(b.Columns)),
		ColumnOrder: append([]string(nil), b.ColumnOrder...),
	}
	for id, t := range b.Tasks {
		out.Tasks[id] = t
	}
	for id, c := range b.Columns {
		ids := make([]string, len(c.TaskIDs))
		copy(ids, c.TaskIDs)
		c.TaskIDs = ids
		out.Columns[id] = c
	}
	return out
}

// Len returns the number of tasks on the board.
func (b Board) Len() int {
	return len(b.Tasks)
}
