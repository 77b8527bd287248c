package board

import "taskboard/internal/model"

// Snapshot is the render input for one board: columns in order and, per
// column id, the tasks that column currently shows.
type Snapshot struct {
	Columns       []model.Column          `json:"columns"`
	TasksByColumn map[string][]model.Task `json:"tasks_by_column"`
}

// TaskCount is the number of tasks visible in some column.
func (s Snapshot) TaskCount() int {
	n := 0
	for _, tasks := range s.TasksByColumn {
		n += len(tasks)
	}
	return n
}
