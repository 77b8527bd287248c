package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/board"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// BoardOpener loads the board of a stored project on first use.
type BoardOpener interface {
	EnsureBoard(ctx context.Context, projectID uuid.UUID) error
}

// BoardHandler exposes the board commands of one project. Every command
// answers 200 with the resulting snapshot, whether or not it changed
// anything.
type BoardHandler struct {
	boards   *service.BoardService
	projects BoardOpener
	logger   *zap.Logger
}

func NewBoardHandler(boards *service.BoardService, projects BoardOpener, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, projects: projects, logger: logger}
}

type ColumnRequest struct {
	Title string `json:"title"`
}

type TaskCreateRequest struct {
	ColumnID string `json:"column_id"`
	Title    string `json:"title"`
}

type MoveTaskRequest struct {
	ColumnID string `json:"column_id"`
}

type DragStartRequest struct {
	TaskID string `json:"task_id"`
}

type DragOverRequest struct {
	ColumnID string `json:"column_id"`
}

// DropRequest names the column the card was released over, or the card it
// was released on. Both may be empty.
type DropRequest struct {
	ColumnID string `json:"column_id"`
	TaskID   string `json:"task_id"`
}

// PointerDragEndRequest carries the dragged id and whatever was under the
// pointer: a column id, a task id, or nothing.
type PointerDragEndRequest struct {
	ActiveID string `json:"active_id" binding:"required"`
	OverID   string `json:"over_id"`
}

type commandFunc func(ctx context.Context, projectID uuid.UUID) (board.Snapshot, error)

// GetBoard godoc
// @Summary      Current board snapshot
// @Tags         Board
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} board.Snapshot
// @Failure      404 {object} map[string]string
// @Router       /projects/{id}/board [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	h.run(c, h.boards.Snapshot)
}

func (h *BoardHandler) GetDragState(c *gin.Context) {
	projectID, ok := h.resolve(c)
	if !ok {
		return
	}
	state, err := h.boards.DragState(c.Request.Context(), projectID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *BoardHandler) AddColumn(c *gin.Context) {
	var req ColumnRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.AddColumn(ctx, id, req.Title)
	})
}

func (h *BoardHandler) RenameColumn(c *gin.Context) {
	var req ColumnRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	columnID := c.Param("column_id")
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.RenameColumn(ctx, id, columnID, req.Title)
	})
}

func (h *BoardHandler) AddTask(c *gin.Context) {
	var req TaskCreateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.AddTask(ctx, id, req.ColumnID, req.Title)
	})
}

func (h *BoardHandler) UpdateTask(c *gin.Context) {
	var patch board.TaskPatch
	if !bindOptionalJSON(c, &patch) {
		return
	}
	taskID := c.Param("task_id")
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.UpdateTask(ctx, id, taskID, patch)
	})
}

func (h *BoardHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("task_id")
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.DeleteTask(ctx, id, taskID)
	})
}

// MoveTask godoc
// @Summary      Move a task to another column without dragging
// @Tags         Board
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string          true "Project ID"
// @Param        task_id path string          true "Task ID"
// @Param        request body MoveTaskRequest true "Target column"
// @Success      200 {object} board.Snapshot
// @Router       /projects/{id}/board/tasks/{task_id}/move [post]
func (h *BoardHandler) MoveTask(c *gin.Context) {
	var req MoveTaskRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	taskID := c.Param("task_id")
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.MoveTask(ctx, id, taskID, req.ColumnID)
	})
}

func (h *BoardHandler) DragStart(c *gin.Context) {
	var req DragStartRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.StartDrag(ctx, id, req.TaskID)
	})
}

func (h *BoardHandler) DragOver(c *gin.Context) {
	var req DragOverRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.DragOverColumn(ctx, id, req.ColumnID)
	})
}

func (h *BoardHandler) DragLeave(c *gin.Context) {
	h.run(c, h.boards.DragLeaveColumn)
}

// Drop godoc
// @Summary      Release the dragged task
// @Description  With task_id the drop lands in that task's column; with neither field the tracked column is used, or the drag is cancelled.
// @Tags         Board
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string      true  "Project ID"
// @Param        request body DropRequest false "Drop target"
// @Success      200 {object} board.Snapshot
// @Router       /projects/{id}/board/drag/drop [post]
func (h *BoardHandler) Drop(c *gin.Context) {
	var req DropRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		if req.TaskID != "" {
			return h.boards.DropOnTask(ctx, id, req.TaskID)
		}
		return h.boards.Drop(ctx, id, req.ColumnID)
	})
}

func (h *BoardHandler) DragCancel(c *gin.Context) {
	h.run(c, h.boards.CancelDrag)
}

func (h *BoardHandler) DragEnd(c *gin.Context) {
	var req PointerDragEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	h.run(c, func(ctx context.Context, id uuid.UUID) (board.Snapshot, error) {
		return h.boards.PointerDragEnd(ctx, id, req.ActiveID, req.OverID)
	})
}

func (h *BoardHandler) run(c *gin.Context, fn commandFunc) {
	projectID, ok := h.resolve(c)
	if !ok {
		return
	}

	snap, err := fn(c.Request.Context(), projectID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// resolve parses the project id and makes sure its board is open.
func (h *BoardHandler) resolve(c *gin.Context) (uuid.UUID, bool) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return uuid.Nil, false
	}
	if h.boards.IsOpen(projectID) {
		return projectID, true
	}
	if err := h.projects.EnsureBoard(c.Request.Context(), projectID); err != nil {
		h.writeError(c, err)
		return uuid.Nil, false
	}
	return projectID, true
}

func (h *BoardHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBoardNotFound), errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Request canceled"})
	default:
		h.logger.Error("Board command failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Board command failed"})
	}
}

// bindOptionalJSON binds the body when there is one. An empty body leaves
// dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}
	return true
}
