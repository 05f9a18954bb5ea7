package board

import (
	"fmt"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Validate checks a board against the pipeline it is used with: the columns
// are exactly the pipeline's stages, column order is a permutation of them,
// and every task is listed in exactly one column.
func Validate(b types.Board, p types.Pipeline) error {
	if len(b.Columns) != len(p.Stages) {
		return fmt.Errorf("%w: %d columns for %d stages", types.ErrBoardInvalid, len(b.Columns), len(p.Stages))
	}
	for _, s := range p.Stages {
		col, ok := b.Columns[s.ID]
		if !ok {
			return fmt.Errorf("%w: missing column %q", types.ErrBoardInvalid, s.ID)
		}
		if col.ID != s.ID {
			return fmt.Errorf("%w: column %q keyed as %q", types.ErrBoardInvalid, col.ID, s.ID)
		}
	}

	if len(b.ColumnOrder) != len(p.Stages) {
		return fmt.Errorf("%w: column order has %d entries", types.ErrBoardInvalid, len(b.ColumnOrder))
	}
	ordered := make(map[string]bool, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if _, ok := b.Columns[id]; !ok || ordered[id] {
			return fmt.Errorf("%w: column order is not a permutation of columns", types.ErrBoardInvalid)
		}
		ordered[id] = true
	}

	owner := make(map[string]string, len(b.Tasks))
	for colID, col := range b.Columns {
		for _, id := range col.TaskIDs {
			if _, ok := b.Tasks[id]; !ok {
				return fmt.Errorf("%w: column %q lists unknown task %q", types.ErrBoardInvalid, colID, id)
			}
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("%w: task %q listed in %q and %q", types.ErrBoardInvalid, id, prev, colID)
			}
			owner[id] = colID
		}
	}
	for id, t := range b.Tasks {
		if t.ID != id {
			return fmt.Errorf("%w: task %q keyed as %q", types.ErrBoardInvalid, t.ID, id)
		}
		if _, ok := owner[id]; !ok {
			return fmt.Errorf("%w: task %q is in no column", types.ErrBoardInvalid, id)
		}
	}
	return nil
}
