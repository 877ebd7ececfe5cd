package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cloudwalk/assistant/internal/chat"
	"github.com/cloudwalk/assistant/internal/intent"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
)

// maxChatBodyBytes limits chat request bodies.
const maxChatBodyBytes = 1 << 20

type chatHandler struct {
	assistant *chat.Assistant
	sessions  *session.Manager
	logger    log.Logger
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	Response  string        `json:"response"`
	Language  string        `json:"language"`
	Intents   []intent.Kind `json:"intents"`
	Fallback  bool          `json:"fallback,omitempty"`
}

// send handles POST /api/v1/chat. An empty session_id starts a new
// session; its id comes back in the response for the next turn.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	var conv *session.Context
	if req.SessionID == "" {
		conv = h.sessions.Create()
	} else {
		var err error
		conv, err = h.sessions.Get(req.SessionID)
		if err != nil {
			writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
			return
		}
	}

	// One turn at a time per session.
	conv.LockTurn()
	defer conv.UnlockTurn()

	reply, err := h.assistant.Respond(r.Context(), conv, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "empty_message", "message is required", h.logger)
		return
	case err != nil:
		h.logger.Error("chat turn failed",
			slog.String("session_id", conv.ID()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: conv.ID(),
		Response:  reply.Text,
		Language:  reply.Language,
		Intents:   reply.Intents,
		Fallback:  reply.Fallback,
	}, h.logger)
}
