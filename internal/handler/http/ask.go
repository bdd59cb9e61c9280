package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type Asker interface {
	// Ask answers message in the given session, opening one when sessionId
	// is blank, and returns the session id used.
	Ask(ctx context.Context, sessionId string, message string) (string, string, error)
}

type askRequest struct {
	Message   string `json:"message"`
	SessionId string `json:"session_id,omitempty"`
}

type askResponse struct {
	Text      string `json:"text"`
	SessionId string `json:"session_id"`
}

type askHandler struct {
	asker Asker
}

func (h *askHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	defer r.Body.Close()

	if len(strings.TrimSpace(req.Message)) == 0 {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionId, text, err := h.asker.Ask(r.Context(), req.SessionId, req.Message)
	if err != nil {
		slog.ErrorContext(r.Context(), "ask failed", "session", req.SessionId, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Text: text, SessionId: sessionId})
}

func NewAskHandler(asker Asker) *askHandler {
	return &askHandler{asker: asker}
}
