package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"reelgraph/internal/logging"
	"reelgraph/internal/metrics"
	"reelgraph/internal/service"
)

const (
	transportWS = "ws"

	wsReadLimit  = 64 << 10
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second
)

// Gesture message types sent by the client
const (
	MsgDragStart  = "drag_start"
	MsgDragHover  = "drag_hover"
	MsgDragEnd    = "drag_end"
	MsgDragCancel = "drag_cancel"
	MsgHoverNode  = "hover_node"
	MsgHoverEdge  = "hover_edge"
	MsgHoverClear = "hover_clear"
	MsgDelete     = "delete"
	MsgAddNode    = "add_node"
)

// Reply types sent by the server
const (
	ReplySession = "session"
	ReplyOK      = "ok"
	ReplyError   = "error"
)

// ClientMessage is one gesture from the browser
type ClientMessage struct {
	Type   string         `json:"type"`
	Node   string         `json:"node,omitempty"`
	Source string         `json:"source,omitempty"`
	Target string         `json:"target,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// ServerMessage answers exactly one ClientMessage, except the session
// greeting sent on connect
type ServerMessage struct {
	Type    string `json:"type"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// GestureHandler serves the gesture WebSocket
type GestureHandler struct {
	svc      *service.GraphService
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewGestureHandler creates a new gesture handler. m may be nil.
func NewGestureHandler(svc *service.GraphService, m *metrics.Metrics, logger *slog.Logger) *GestureHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GestureHandler{
		svc:     svc,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and processes gestures until the
// client goes away
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	defer conn.Close()

	session := h.svc.NewSession()
	l := h.logger
	if rl := logging.FromContext(r.Context()); rl != slog.Default() {
		l = rl
	}
	l = l.With("session", session.ID)
	ctx := logging.WithLogger(r.Context(), l)

	h.metrics.ClientConnected(transportWS)
	defer h.metrics.ClientDisconnected(transportWS)
	l.Info("WebSocket client connected")
	defer l.Info("WebSocket client disconnected")

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// WriteControl is safe alongside the loop's WriteJSON calls.
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	if err := h.write(conn, ServerMessage{
		Type:   ReplySession,
		Result: map[string]string{"id": session.ID},
	}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg ClientMessage
		var reply ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = errorReply(service.KindBadRequest, "invalid message: "+err.Error())
		} else {
			reply = h.dispatch(ctx, session, msg)
		}

		if err := h.write(conn, reply); err != nil {
			l.Warn("WebSocket write failed", "error", err)
			return
		}
	}
}

func (h *GestureHandler) write(conn *websocket.Conn, msg ServerMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// dispatch applies one gesture to the session and builds the reply
func (h *GestureHandler) dispatch(ctx context.Context, s *service.Session, msg ClientMessage) ServerMessage {
	switch msg.Type {
	case MsgDragStart:
		if err := s.StartDrag(ctx, msg.Node); err != nil {
			return failReply(err)
		}
		return okReply(s.State())

	case MsgDragHover:
		s.DragHover(msg.Node)
		return okReply(s.State())

	case MsgDragEnd:
		res, err := s.EndDrag(ctx)
		if err != nil {
			return failReply(err)
		}
		return okReply(res)

	case MsgDragCancel:
		s.CancelDrag()
		return okReply(s.State())

	case MsgHoverNode:
		s.HoverNode(msg.Node)
		return okReply(s.Hovered())

	case MsgHoverEdge:
		s.HoverEdge(msg.Source, msg.Target)
		return okReply(s.Hovered())

	case MsgHoverClear:
		s.ClearHover()
		return okReply(s.Hovered())

	case MsgDelete:
		res, err := s.DeleteHovered(ctx, msg.Target)
		if err != nil {
			return failReply(err)
		}
		return okReply(res)

	case MsgAddNode:
		id, err := s.AddNode(ctx, msg.Attrs)
		if err != nil {
			return failReply(err)
		}
		return okReply(map[string]string{"id": id})

	default:
		return errorReply(service.KindBadRequest, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func okReply(result any) ServerMessage {
	return ServerMessage{Type: ReplyOK, Result: result}
}

func failReply(err error) ServerMessage {
	return errorReply(service.ErrorKind(err), err.Error())
}

func errorReply(kind, details string) ServerMessage {
	return ServerMessage{Type: ReplyError, Error: kind, Details: details}
}
