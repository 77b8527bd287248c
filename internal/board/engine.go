package board

import (
	"strings"

	"taskboard/internal/model"
)

// Commands is the input surface every gesture front-end talks to. Each
// command returns the resulting snapshot and whether the board changed.
type Commands interface {
	StartDrag(taskID string) (Snapshot, bool)
	DragOverColumn(columnID string) (Snapshot, bool)
	DragLeaveColumn() (Snapshot, bool)
	Drop(columnID string) (Snapshot, bool)
	DropOnTask(taskID string) (Snapshot, bool)
	CancelDrag() (Snapshot, bool)
	MoveTask(taskID, columnID string) (Snapshot, bool)
	DragState() DragState
}

var _ Commands = (*Engine)(nil)

// Engine couples a Store with the drag tracker for that board.
type Engine struct {
	store   *Store
	tracker Tracker
}

func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

func (e *Engine) Store() *Store {
	return e.store
}

func (e *Engine) Snapshot() Snapshot {
	return e.store.Snapshot()
}

func (e *Engine) DragState() DragState {
	return e.tracker.State()
}

// Reassign moves taskID into targetColumnID and reports whether anything
// changed. Missing tasks and unknown columns are no-ops. The task keeps its
// place in the collection, so collection order decides where it shows up
// within the new column.
func (e *Engine) Reassign(taskID, targetColumnID string) bool {
	task, ok := e.store.Task(taskID)
	if !ok {
		return false
	}
	if task.ColumnID == targetColumnID {
		return false
	}
	if !e.store.HasColumn(targetColumnID) {
		return false
	}
	return e.store.ReplaceTask(taskID, func(t model.Task) model.Task {
		t.ColumnID = targetColumnID
		return t
	})
}

// ResolveDropTarget maps a drop on a task to that task's column.
func (e *Engine) ResolveDropTarget(overTaskID string) (string, bool) {
	task, ok := e.store.Task(overTaskID)
	if !ok {
		return "", false
	}
	return task.ColumnID, true
}

// StartDrag begins a gesture for an existing task. Tasks that are unknown
// leave the tracker untouched.
func (e *Engine) StartDrag(taskID string) (Snapshot, bool) {
	if e.store.HasTask(taskID) {
		e.tracker.Start(taskID)
	}
	return e.store.Snapshot(), false
}

func (e *Engine) DragOverColumn(columnID string) (Snapshot, bool) {
	e.tracker.Enter(columnID)
	return e.store.Snapshot(), false
}

func (e *Engine) DragLeaveColumn() (Snapshot, bool) {
	e.tracker.Leave()
	return e.store.Snapshot(), false
}

// Drop releases the gesture over columnID. An explicit columnID commits the
// move from Dragging as well as OverColumn, so a client that never reported
// drag-over can still drop. An empty columnID falls back to the column the
// tracker last entered; with neither, the drop counts as a cancellation.
// Drop while Idle changes nothing.
func (e *Engine) Drop(columnID string) (Snapshot, bool) {
	state, ok := e.tracker.Release()
	if !ok {
		return e.store.Snapshot(), false
	}
	target := columnID
	if target == "" {
		target = state.ColumnID
	}
	if target == "" {
		return e.store.Snapshot(), false
	}
	changed := e.Reassign(state.TaskID, target)
	return e.store.Snapshot(), changed
}

// DropOnTask releases the gesture on top of another task card.
func (e *Engine) DropOnTask(overTaskID string) (Snapshot, bool) {
	columnID, ok := e.ResolveDropTarget(overTaskID)
	if !ok {
		return e.CancelDrag()
	}
	return e.Drop(columnID)
}

func (e *Engine) CancelDrag() (Snapshot, bool) {
	e.tracker.Cancel()
	return e.store.Snapshot(), false
}

// MoveTask is the non-drag move used by menus; it does not touch the tracker.
func (e *Engine) MoveTask(taskID, columnID string) (Snapshot, bool) {
	changed := e.Reassign(taskID, columnID)
	return e.store.Snapshot(), changed
}

func (e *Engine) AddColumn(title string) (Snapshot, bool) {
	_, ok := e.store.AddColumn(title)
	return e.store.Snapshot(), ok
}

func (e *Engine) RenameColumn(columnID, title string) (Snapshot, bool) {
	ok := e.store.RenameColumn(columnID, title)
	return e.store.Snapshot(), ok
}

func (e *Engine) AddTask(columnID, title string) (Snapshot, bool) {
	_, ok := e.store.AddTask(columnID, title)
	return e.store.Snapshot(), ok
}

// DeleteTask removes a task. Deleting the task being dragged does not end the
// gesture; its drop simply finds nothing to move.
func (e *Engine) DeleteTask(taskID string) (Snapshot, bool) {
	ok := e.store.DeleteTask(taskID)
	return e.store.Snapshot(), ok
}

// TaskPatch carries optional edits for a task. Nil fields are left alone.
type TaskPatch struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *model.Priority `json:"priority"`
	Assignee    *string         `json:"assignee"`
	DueDate     *string         `json:"due_date"`
	Tags        *[]string       `json:"tags"`
}

// UpdateTask applies patch to a task's display fields. The column is never
// changed here; a blank title or an unknown priority is ignored.
func (e *Engine) UpdateTask(taskID string, patch TaskPatch) (Snapshot, bool) {
	if !e.store.HasTask(taskID) || patch.empty() {
		return e.store.Snapshot(), false
	}
	ok := e.store.ReplaceTask(taskID, func(t model.Task) model.Task {
		if patch.Title != nil {
			if title := strings.TrimSpace(*patch.Title); title != "" {
				t.Title = title
			}
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil && patch.Priority.Valid() {
			t.Priority = *patch.Priority
		}
		if patch.Assignee != nil {
			t.Assignee = strings.TrimSpace(*patch.Assignee)
		}
		if patch.DueDate != nil {
			t.DueDate = strings.TrimSpace(*patch.DueDate)
		}
		if patch.Tags != nil {
			t.Tags = append([]string{}, (*patch.Tags)...)
		}
		return t
	})
	return e.store.Snapshot(), ok
}

func (p TaskPatch) empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Assignee == nil && p.DueDate == nil && p.Tags == nil
}
