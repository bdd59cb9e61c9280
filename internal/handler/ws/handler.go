package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/w-h-a/librarian/conversation"
	speechsvc "github.com/w-h-a/librarian/internal/service/speech"
)

const (
	heartbeat = "alive"

	invalidJSON   = "JSON inválido"
	invalidFormat = `Formato de mensaje inválido. Se requiere: {"message":"...", "id":"..."}`
)

type Agent interface {
	Respond(ctx context.Context, sessionId string, userInput string) (string, error)
}

type Sessions interface {
	Open(ctx context.Context) (string, error)
	End(ctx context.Context, sessionId string)
	Recent(ctx context.Context, sessionId string) ([]conversation.Turn, error)
}

type Performer interface {
	Acknowledge(ctx context.Context) speechsvc.Acknowledgement
	Perform(ctx context.Context, text string, messageId string, history []conversation.Turn, emit speechsvc.Emit) error
}

type errorEnvelope struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws  *websocket.Conn
	mtx sync.Mutex
}

func (c *conn) writeText(msg string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (c *conn) writeJSON(v any) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *conn) writeError(msg string) error {
	return c.writeJSON(errorEnvelope{Error: msg, Type: "error"})
}

type wsHandler struct {
	agent       Agent
	sessions    Sessions
	performer   Performer
	upgrader    websocket.Upgrader
	acknowledge bool
}

func (h *wsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	ctx := r.Context()

	sessionId, err := h.sessions.Open(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open session", "error", err)
		return
	}
	defer h.sessions.End(context.Background(), sessionId)

	slog.InfoContext(ctx, "client connected", "session", sessionId, "remote", r.RemoteAddr)

	c := &conn{ws: ws}

	for {
		kind, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "client connection lost", "session", sessionId, "error", err)
			} else {
				slog.InfoContext(ctx, "client disconnected", "session", sessionId)
			}
			return
		}

		if kind != websocket.TextMessage {
			continue
		}

		if err := h.dispatch(ctx, c, sessionId, string(raw)); err != nil {
			slog.WarnContext(ctx, "failed to write to client", "session", sessionId, "error", err)
			return
		}
	}
}

// dispatch handles one inbound frame. Turn failures are reported to the
// client; only write failures end the connection.
func (h *wsHandler) dispatch(ctx context.Context, c *conn, sessionId string, raw string) error {
	if raw == heartbeat {
		return c.writeText(heartbeat)
	}

	var msg map[string]any
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return c.writeError(invalidJSON)
	}

	text, hasMessage := msg["message"]
	id, hasId := msg["id"]
	if !hasMessage || !hasId {
		return c.writeError(invalidFormat)
	}

	messageId := fmt.Sprint(id)

	if err := h.turn(ctx, c, sessionId, fmt.Sprint(text), messageId); err != nil {
		slog.ErrorContext(ctx, "turn failed", "session", sessionId, "message_id", messageId, "error", err)
		return c.writeError(err.Error())
	}

	return nil
}

func (h *wsHandler) turn(ctx context.Context, c *conn, sessionId string, text string, messageId string) error {
	start := time.Now()

	if h.acknowledge && h.performer != nil {
		if err := c.writeJSON(h.performer.Acknowledge(ctx)); err != nil {
			return err
		}
	}

	answer, err := h.agent.Respond(ctx, sessionId, text)
	if err != nil {
		return err
	}

	answer = speechsvc.CleanForVoice(answer)

	slog.InfoContext(ctx, "agent answered", "session", sessionId, "message_id", messageId, "elapsed", time.Since(start))

	if h.performer == nil {
		return c.writeJSON(map[string]string{"text": answer, "message_id": messageId})
	}

	history, err := h.sessions.Recent(ctx, sessionId)
	if err != nil {
		slog.WarnContext(ctx, "failed to load history for animation", "session", sessionId, "error", err)
		history = nil
	}

	return h.performer.Perform(ctx, answer, messageId, history, func(ctx context.Context, payload any) error {
		return c.writeJSON(payload)
	})
}

func NewHandler(agent Agent, sessions Sessions, performer Performer, acknowledge bool) *wsHandler {
	return &wsHandler{
		agent:       agent,
		sessions:    sessions,
		performer:   performer,
		acknowledge: acknowledge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}
