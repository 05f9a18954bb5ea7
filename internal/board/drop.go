package board

// Location is a position inside a droppable column.
type Location struct {
	DroppableID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// DropResult is what a drag-and-drop front end reports when a drag ends.
// Destination is nil when the card was dropped outside every column.
type DropResult struct {
	DraggableID string    `json:"draggableId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination"`
}

// ToMutation converts a drop into a MoveTask. It returns false for drops
// that must be ignored: no destination, or the same position it started at.
func (d DropResult) ToMutation() (MoveTask, bool) {
	if d.Destination == nil {
		return MoveTask{}, false
	}
	if d.Destination.DroppableID == d.Source.DroppableID && d.Destination.Index == d.Source.Index {
		return MoveTask{}, false
	}
	return MoveTask{
		TaskID:              d.DraggableID,
		SourceColumnID:      d.Source.DroppableID,
		DestinationColumnID: d.Destination.DroppableID,
		SourceIndex:         d.Source.Index,
		DestinationIndex:    d.Destination.Index,
	}, true
}
