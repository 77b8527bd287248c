package model

// Priority only drives display classification.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one column. ColumnID is the only
// field touched by drag reassignment.
type Task struct {
	ID          string   `json:"id" yaml:"id"`
	ColumnID    string   `json:"column_id" yaml:"column_id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`
	Assignee    string   `json:"assignee" yaml:"assignee"`
	DueDate     string   `json:"due_date" yaml:"due_date"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	tags := make([]string, len(t.Tags))
	copy(tags, t.Tags)
	t.Tags = tags
	return t
}
