package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/board"
	"taskboard/internal/metrics"
	"taskboard/internal/seed"
)

// Command names used in logs and in the board command metric.
const (
	CommandStartDrag      = "start_drag"
	CommandDragOver       = "drag_over"
	CommandDragLeave      = "drag_leave"
	CommandDrop           = "drop"
	CommandDropOnTask     = "drop_on_task"
	CommandCancelDrag     = "cancel_drag"
	CommandPointerDragEnd = "pointer_drag_end"
	CommandMoveTask       = "move_task"
	CommandAddColumn      = "add_column"
	CommandRenameColumn   = "rename_column"
	CommandAddTask        = "add_task"
	CommandUpdateTask     = "update_task"
	CommandDeleteTask     = "delete_task"
)

// Session is one open board. Its mutex serializes every command so the engine
// sees them one at a time, in arrival order.
type Session struct {
	mu     sync.Mutex
	engine *board.Engine
}

// BoardService owns the in-memory boards, one per project.
type BoardService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	fixture  *seed.Fixture
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewBoardService creates the session registry. New boards are seeded from
// fixture when it is not nil.
func NewBoardService(fixture *seed.Fixture, m *metrics.Metrics, logger *zap.Logger) *BoardService {
	return &BoardService{
		sessions: make(map[uuid.UUID]*Session),
		fixture:  fixture,
		metrics:  m,
		logger:   logger,
	}
}

// OpenBoard creates the board for projectID unless it is already open.
// It reports whether a new board was created.
func (s *BoardService) OpenBoard(projectID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[projectID]; ok {
		return false
	}

	store := board.NewStore()
	if s.fixture != nil {
		s.fixture.Apply(store)
	}
	s.sessions[projectID] = &Session{engine: board.NewEngine(store)}
	s.metrics.SetBoardsOpen(len(s.sessions))

	s.logger.Info("Board opened",
		zap.String("project_id", projectID.String()),
		zap.Int("columns", len(store.Columns())),
		zap.Int("tasks", store.Snapshot().TaskCount()),
	)
	return true
}

// CloseBoard drops the board for projectID and everything on it.
func (s *BoardService) CloseBoard(projectID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[projectID]; !ok {
		return false
	}
	delete(s.sessions, projectID)
	s.metrics.SetBoardsOpen(len(s.sessions))
	s.logger.Info("Board closed", zap.String("project_id", projectID.String()))
	return true
}

// IsOpen reports whether the project's board is loaded.
func (s *BoardService) IsOpen(projectID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[projectID]
	return ok
}

func (s *BoardService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *BoardService) session(projectID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[projectID]
	if !ok {
		return nil, ErrBoardNotFound
	}
	return sess, nil
}

func (s *BoardService) Snapshot(ctx context.Context, projectID uuid.UUID) (board.Snapshot, error) {
	var snap board.Snapshot
	err := s.read(ctx, projectID, func(e *board.Engine) {
		snap = e.Snapshot()
	})
	return snap, err
}

func (s *BoardService) DragState(ctx context.Context, projectID uuid.UUID) (board.DragState, error) {
	var state board.DragState
	err := s.read(ctx, projectID, func(e *board.Engine) {
		state = e.DragState()
	})
	return state, err
}

func (s *BoardService) StartDrag(ctx context.Context, projectID uuid.UUID, taskID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandStartDrag, func(e *board.Engine) (board.Snapshot, bool) {
		return board.NativeDrag{Commands: e}.DragStart(taskID)
	})
}

func (s *BoardService) DragOverColumn(ctx context.Context, projectID uuid.UUID, columnID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandDragOver, func(e *board.Engine) (board.Snapshot, bool) {
		return board.NativeDrag{Commands: e}.DragOver(columnID)
	})
}

func (s *BoardService) DragLeaveColumn(ctx context.Context, projectID uuid.UUID) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandDragLeave, func(e *board.Engine) (board.Snapshot, bool) {
		return board.NativeDrag{Commands: e}.DragLeave()
	})
}

// Drop ends the active gesture over columnID, or over the tracked column when
// columnID is empty.
func (s *BoardService) Drop(ctx context.Context, projectID uuid.UUID, columnID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandDrop, func(e *board.Engine) (board.Snapshot, bool) {
		return board.NativeDrag{Commands: e}.Drop(columnID)
	})
}

func (s *BoardService) DropOnTask(ctx context.Context, projectID uuid.UUID, overTaskID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandDropOnTask, func(e *board.Engine) (board.Snapshot, bool) {
		return e.DropOnTask(overTaskID)
	})
}

func (s *BoardService) CancelDrag(ctx context.Context, projectID uuid.UUID) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandCancelDrag, func(e *board.Engine) (board.Snapshot, bool) {
		return board.NativeDrag{Commands: e}.DragEnd()
	})
}

// PointerDragEnd finishes a sensor style gesture in one call. overID may name
// a column, a task, or be empty.
func (s *BoardService) PointerDragEnd(ctx context.Context, projectID uuid.UUID, activeID, overID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandPointerDragEnd, func(e *board.Engine) (board.Snapshot, bool) {
		return board.PointerDrag{Commands: e, Tasks: e.Store()}.DragEnd(activeID, overID)
	})
}

func (s *BoardService) MoveTask(ctx context.Context, projectID uuid.UUID, taskID, columnID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandMoveTask, func(e *board.Engine) (board.Snapshot, bool) {
		return board.MenuMove{Commands: e}.MoveTo(taskID, columnID)
	})
}

func (s *BoardService) AddColumn(ctx context.Context, projectID uuid.UUID, title string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandAddColumn, func(e *board.Engine) (board.Snapshot, bool) {
		return e.AddColumn(title)
	})
}

func (s *BoardService) RenameColumn(ctx context.Context, projectID uuid.UUID, columnID, title string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandRenameColumn, func(e *board.Engine) (board.Snapshot, bool) {
		return e.RenameColumn(columnID, title)
	})
}

func (s *BoardService) AddTask(ctx context.Context, projectID uuid.UUID, columnID, title string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandAddTask, func(e *board.Engine) (board.Snapshot, bool) {
		return e.AddTask(columnID, title)
	})
}

func (s *BoardService) UpdateTask(ctx context.Context, projectID uuid.UUID, taskID string, patch board.TaskPatch) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandUpdateTask, func(e *board.Engine) (board.Snapshot, bool) {
		return e.UpdateTask(taskID, patch)
	})
}

func (s *BoardService) DeleteTask(ctx context.Context, projectID uuid.UUID, taskID string) (board.Snapshot, error) {
	return s.exec(ctx, projectID, CommandDeleteTask, func(e *board.Engine) (board.Snapshot, bool) {
		return e.DeleteTask(taskID)
	})
}

// Subscribe registers fn for every change on the project's board and hands
// it the current snapshot first, in the same critical section, so no change
// can slip in between. fn runs while the session is locked and must not call
// back into the service.
func (s *BoardService) Subscribe(projectID uuid.UUID, fn board.Listener) (func(), error) {
	sess, err := s.session(projectID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	cancel := sess.engine.Store().Subscribe(fn)
	fn(sess.engine.Snapshot())
	sess.mu.Unlock()

	return func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		cancel()
	}, nil
}

func (s *BoardService) read(ctx context.Context, projectID uuid.UUID, fn func(*board.Engine)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := s.session(projectID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.engine)
	return nil
}

func (s *BoardService) exec(
	ctx context.Context,
	projectID uuid.UUID,
	command string,
	fn func(*board.Engine) (board.Snapshot, bool),
) (board.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return board.Snapshot{}, err
	}
	sess, err := s.session(projectID)
	if err != nil {
		return board.Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap, changed := fn(sess.engine)
	s.metrics.RecordBoardCommand(command, changed)

	fields := []zap.Field{
		zap.String("project_id", projectID.String()),
		zap.String("command", command),
		zap.String("drag_phase", sess.engine.DragState().Phase.String()),
	}
	if changed {
		s.logger.Info("Board changed", fields...)
	} else {
		s.logger.Debug("Board command", fields...)
	}
	return snap, nil
}
