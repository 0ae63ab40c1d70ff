package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nvaneck/escape-engine/internal/engine"
	"github.com/nvaneck/escape-engine/pkg/chat"
)

// TurnHandler processes player turns.
type TurnHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewTurnHandler(eng *engine.Engine, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		engine: eng,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/turn
func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for turn endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid turn request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' and 'utterance'.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.ProcessTurn(r.Context(), req.SessionID, req.Utterance)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
