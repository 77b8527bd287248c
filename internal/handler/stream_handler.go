package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskboard/internal/board"
	"taskboard/internal/metrics"
	"taskboard/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Inbound command types accepted on the stream.
const (
	StreamDragStart  = "drag_start"
	StreamDragOver   = "drag_over"
	StreamDragLeave  = "drag_leave"
	StreamDrop       = "drop"
	StreamDragCancel = "drag_cancel"
	StreamDragEnd    = "drag_end"
	StreamMove       = "move"
)

// Outbound message types.
const (
	StreamSnapshot = "snapshot"
	StreamAck      = "ack"
	StreamError    = "error"
)

// StreamCommand is a board command sent by the client over the websocket.
type StreamCommand struct {
	Type     string `json:"type"`
	TaskID   string `json:"task_id,omitempty"`
	ColumnID string `json:"column_id,omitempty"`
	OverID   string `json:"over_id,omitempty"`
}

// StreamMessage is what the server pushes to the client.
type StreamMessage struct {
	Type     string           `json:"type"`
	Snapshot *board.Snapshot  `json:"snapshot,omitempty"`
	Drag     *board.DragState `json:"drag,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// StreamHandler pushes board snapshots to websocket clients and accepts drag
// commands from them.
type StreamHandler struct {
	boards   *service.BoardService
	projects BoardOpener
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewStreamHandler(boards *service.BoardService, projects BoardOpener, m *metrics.Metrics, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{boards: boards, projects: projects, metrics: m, logger: logger}
}

type streamClient struct {
	conn      *websocket.Conn
	projectID uuid.UUID
	updates   chan board.Snapshot
	replies   chan StreamMessage
	done      chan struct{}
	stopped   chan struct{}
}

// push hands the newest snapshot to the writer, replacing one it has not
// picked up yet. It runs under the board's session lock, so it never blocks.
func (sc *streamClient) push(snap board.Snapshot) {
	for {
		select {
		case sc.updates <- snap:
			return
		default:
			select {
			case <-sc.updates:
			default:
			}
		}
	}
}

func (sc *streamClient) reply(msg StreamMessage) {
	select {
	case sc.replies <- msg:
	case <-sc.done:
	case <-sc.stopped:
	}
}

// Stream godoc
// @Summary      Live board snapshots over websocket
// @Tags         Board
// @Param        id           path  string true "Project ID"
// @Param        access_token query string true "JWT"
// @Router       /projects/{id}/board/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if !h.boards.IsOpen(projectID) {
		if err := h.projects.EnsureBoard(ctx, projectID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	sc := &streamClient{
		conn:      conn,
		projectID: projectID,
		updates:   make(chan board.Snapshot, 1),
		replies:   make(chan StreamMessage, 16),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	unsubscribe, err := h.boards.Subscribe(projectID, sc.push)
	if err != nil {
		h.logger.Warn("Board closed before stream started", zap.String("project_id", projectID.String()))
		conn.Close()
		return
	}

	h.metrics.StreamOpened()
	h.logger.Info("Stream client connected", zap.String("project_id", projectID.String()))

	go h.writePump(sc)
	h.readPump(sc)

	close(sc.done)
	unsubscribe()
	h.metrics.StreamClosed()
	h.logger.Info("Stream client disconnected", zap.String("project_id", projectID.String()))
}

func (h *StreamHandler) readPump(sc *streamClient) {
	sc.conn.SetReadLimit(maxMessageSize)
	sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	sc.conn.SetPongHandler(func(string) error {
		sc.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd StreamCommand
		if err := sc.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Stream read failed", zap.Error(err))
			}
			return
		}
		sc.reply(h.apply(sc.projectID, cmd))
	}
}

func (h *StreamHandler) writePump(sc *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sc.conn.Close()
		close(sc.stopped)
	}()

	for {
		var msg StreamMessage
		select {
		case snap := <-sc.updates:
			msg = StreamMessage{Type: StreamSnapshot, Snapshot: &snap}
		case msg = <-sc.replies:
		case <-ticker.C:
			sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case <-sc.done:
			sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			sc.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sc.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("Stream write failed", zap.Error(err))
			return
		}
	}
}

// apply runs one inbound command. Changes reach the client through the
// subscription; the reply only carries the drag state.
func (h *StreamHandler) apply(projectID uuid.UUID, cmd StreamCommand) StreamMessage {
	ctx := context.Background()
	var err error

	switch cmd.Type {
	case StreamDragStart:
		_, err = h.boards.StartDrag(ctx, projectID, cmd.TaskID)
	case StreamDragOver:
		_, err = h.boards.DragOverColumn(ctx, projectID, cmd.ColumnID)
	case StreamDragLeave:
		_, err = h.boards.DragLeaveColumn(ctx, projectID)
	case StreamDrop:
		if cmd.OverID != "" {
			_, err = h.boards.DropOnTask(ctx, projectID, cmd.OverID)
		} else {
			_, err = h.boards.Drop(ctx, projectID, cmd.ColumnID)
		}
	case StreamDragCancel:
		_, err = h.boards.CancelDrag(ctx, projectID)
	case StreamDragEnd:
		_, err = h.boards.PointerDragEnd(ctx, projectID, cmd.TaskID, cmd.OverID)
	case StreamMove:
		_, err = h.boards.MoveTask(ctx, projectID, cmd.TaskID, cmd.ColumnID)
	default:
		return StreamMessage{Type: StreamError, Error: "unknown command " + cmd.Type}
	}
	if err != nil {
		return StreamMessage{Type: StreamError, Error: err.Error()}
	}

	state, err := h.boards.DragState(ctx, projectID)
	if err != nil {
		return StreamMessage{Type: StreamError, Error: err.Error()}
	}
	return StreamMessage{Type: StreamAck, Drag: &state}
}
