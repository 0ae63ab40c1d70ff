package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nvaneck/escape-engine/internal/engine"
)

// SessionHandler manages session lifecycle and client views.
//
// Routes:
//
//	POST   /v1/session      - Create a new session for a graph
//	GET    /v1/session/{id} - Client view of a session
//	PUT    /v1/session/{id} - Reset an existing session
//	DELETE /v1/session/{id} - Delete a session
type SessionHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSessionHandler(eng *engine.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		logger: logger,
	}
}

// CreateSessionRequest defines the body for creating or resetting a session.
type CreateSessionRequest struct {
	Graph string `json:"graph"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/session"), "/")
	var sessionID uuid.UUID
	if path != "" {
		id, err := uuid.Parse(path)
		if err != nil {
			h.logger.Warn("Invalid session ID", "id", path, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format.")
			return
		}
		sessionID = id
	}

	switch r.Method {
	case http.MethodPost:
		if sessionID != uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "POST takes no session ID; use PUT to reset.")
			return
		}
		h.handleCreate(w, r, uuid.Nil)

	case http.MethodPut:
		if sessionID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required for reset.")
			return
		}
		h.handleCreate(w, r, sessionID)

	case http.MethodGet:
		if sessionID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required.")
			return
		}
		h.handleView(w, r, sessionID)

	case http.MethodDelete:
		if sessionID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required.")
			return
		}
		h.handleDelete(w, r, sessionID)

	default:
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, PUT, DELETE.")
	}
}

// handleCreate creates a session, or resets one when id is non-nil.
func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid session request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'graph'.")
		return
	}
	if req.Graph == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Graph name is required.")
		return
	}

	s, err := h.engine.ResetSession(r.Context(), id, req.Graph)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	view, err := h.engine.ClientView(r.Context(), s.ID)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.logger.Info("Session created", "session_id", s.ID, "graph", req.Graph)
	writeJSON(w, h.logger, http.StatusCreated, view)
}

func (h *SessionHandler) handleView(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	view, err := h.engine.ClientView(r.Context(), id)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.engine.DeleteSession(r.Context(), id); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
