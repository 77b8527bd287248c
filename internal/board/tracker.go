package board

import "fmt"

// Phase is the state of the drag session machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseOverColumn
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseOverColumn:
		return "dragging_over_column"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseDragging, PhaseOverColumn} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown drag phase %q", text)
}

// DragState is what the tracker knows about the gesture in progress. TaskID
// is empty when Idle, ColumnID is empty unless PhaseOverColumn.
type DragState struct {
	Phase    Phase  `json:"phase"`
	TaskID   string `json:"task_id,omitempty"`
	ColumnID string `json:"column_id,omitempty"`
}

// Tracker follows a single pointer's drag gesture:
//
//	Idle --Start--> Dragging --Enter--> OverColumn
//	OverColumn --Leave--> Dragging
//	OverColumn --Release--> Idle   (the caller commits the drop)
//	any --Cancel--> Idle
//
// The zero value is an idle tracker.
type Tracker struct {
	state DragState
}

func (t *Tracker) State() DragState {
	return t.state
}

func (t *Tracker) Active() bool {
	return t.state.Phase != PhaseIdle
}

// Start begins tracking taskID. A gesture already in progress is replaced:
// a pointer can only drag one thing.
func (t *Tracker) Start(taskID string) bool {
	if taskID == "" {
		return false
	}
	t.state = DragState{Phase: PhaseDragging, TaskID: taskID}
	return true
}

// Enter marks columnID as the current drop target. Entering a different
// column while over one first leaves the old target.
func (t *Tracker) Enter(columnID string) bool {
	if columnID == "" {
		return false
	}
	switch t.state.Phase {
	case PhaseDragging:
	case PhaseOverColumn:
		if t.state.ColumnID == columnID {
			return false
		}
		t.Leave()
	default:
		return false
	}
	t.state.Phase = PhaseOverColumn
	t.state.ColumnID = columnID
	return true
}

// Leave clears the drop target and keeps dragging.
func (t *Tracker) Leave() bool {
	if t.state.Phase != PhaseOverColumn {
		return false
	}
	t.state = DragState{Phase: PhaseDragging, TaskID: t.state.TaskID}
	return true
}

// Release ends the gesture and returns the state it ended in. ok is false
// when nothing was being dragged.
func (t *Tracker) Release() (DragState, bool) {
	last := t.state
	t.state = DragState{}
	return last, last.Phase != PhaseIdle
}

func (t *Tracker) Cancel() {
	t.state = DragState{}
}
