package board

import "github.com/google/uuid"

// taskIDPrefix keeps task IDs distinguishable from column IDs in drop events.
const taskIDPrefix = "task-"

// NewTaskID returns a fresh task ID built on a UUID v7.
func NewTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return taskIDPrefix + uuid.New().String()
	}
	return taskIDPrefix + id.String()
}
