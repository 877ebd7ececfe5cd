package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloudwalk/assistant/internal/language"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
)

type sessionHandler struct {
	sessions *session.Manager
	detector *language.Detector
	logger   log.Logger
}

type createSessionRequest struct {
	Language string `json:"language,omitempty"`
	Profile  string `json:"profile,omitempty"`
	Product  string `json:"product,omitempty"`
}

type createSessionResponse struct {
	session.Snapshot
	Greeting string `json:"greeting,omitempty"`
}

// create handles POST /api/v1/sessions. The body is optional; when
// present it can preset language, merchant profile and product. The
// response carries a localized greeting for the UI to display.
func (h *sessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
			return
		}
	}

	if req.Profile != "" && !session.ValidProfile(session.Profile(req.Profile)) {
		writeError(w, http.StatusBadRequest, "invalid_profile", "unknown profile: "+req.Profile, h.logger)
		return
	}
	if req.Language != "" && !h.detector.Supported(req.Language) {
		writeError(w, http.StatusBadRequest, "invalid_language", "unsupported language: "+req.Language, h.logger)
		return
	}

	conv := h.sessions.Create()
	if req.Language != "" {
		conv.SetLanguage(req.Language)
	}
	if req.Profile != "" {
		conv.SetProfile(session.Profile(req.Profile))
	}
	if req.Product != "" {
		conv.SetCurrentProduct(req.Product)
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Snapshot: conv.Snapshot(),
		Greeting: h.detector.Greeting(conv.Language()),
	}, h.logger)
}

// get handles GET /api/v1/sessions/{id}.
func (h *sessionHandler) get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, conv.Snapshot(), h.logger)
}

// end handles DELETE /api/v1/sessions/{id}.
func (h *sessionHandler) end(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.PathValue("id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
