package board

// The types below translate the input model of a particular UI toolkit into
// Commands. They hold no state of their own.

// NativeDrag follows HTML5 drag events: dragstart on a card, dragover and
// dragleave on column drop zones, drop on a column, and dragend on the card
// once the gesture is over (after a drop as well).
type NativeDrag struct {
	Commands Commands
}

func (n NativeDrag) DragStart(taskID string) (Snapshot, bool) {
	return n.Commands.StartDrag(taskID)
}

func (n NativeDrag) DragOver(columnID string) (Snapshot, bool) {
	return n.Commands.DragOverColumn(columnID)
}

func (n NativeDrag) DragLeave() (Snapshot, bool) {
	return n.Commands.DragLeaveColumn()
}

func (n NativeDrag) Drop(columnID string) (Snapshot, bool) {
	return n.Commands.Drop(columnID)
}

// DragEnd is a cancellation unless a drop already closed the gesture, in
// which case it is a no-op.
func (n NativeDrag) DragEnd() (Snapshot, bool) {
	return n.Commands.CancelDrag()
}

// TaskLookup tells a pointer front-end whether an id names a task.
type TaskLookup interface {
	HasTask(id string) bool
}

// PointerDrag follows sensor based toolkits that only report the dragged
// ("active") id on start and the id under the pointer ("over") on end. The
// over id may name a column, a task, or nothing at all.
type PointerDrag struct {
	Commands Commands
	Tasks    TaskLookup
}

func (p PointerDrag) DragStart(activeID string) (Snapshot, bool) {
	return p.Commands.StartDrag(activeID)
}

func (p PointerDrag) DragEnd(activeID, overID string) (Snapshot, bool) {
	if state := p.Commands.DragState(); state.Phase == PhaseIdle || state.TaskID != activeID {
		p.Commands.StartDrag(activeID)
	}
	switch {
	case overID == "":
		return p.Commands.CancelDrag()
	case p.Tasks != nil && p.Tasks.HasTask(overID):
		return p.Commands.DropOnTask(overID)
	default:
		return p.Commands.Drop(overID)
	}
}

// MenuMove is the click-to-move front-end: pick a task, pick a column.
type MenuMove struct {
	Commands Commands
}

func (m MenuMove) MoveTo(taskID, columnID string) (Snapshot, bool) {
	return m.Commands.MoveTask(taskID, columnID)
}
