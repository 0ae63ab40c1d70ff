package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nvaneck/escape-engine/internal/engine"
	"github.com/nvaneck/escape-engine/pkg/decision"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses with
// the user-visible phrasing each case calls for.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var oracleErr *engine.OracleError
	var persistErr *engine.PersistenceError
	var violation *decision.ContractViolationError

	switch {
	case errors.Is(err, engine.ErrTerminalSession):
		writeError(w, logger, http.StatusConflict,
			"The session has ended. Start a new one.")
	case errors.Is(err, engine.ErrSessionNotFound):
		writeError(w, logger, http.StatusNotFound, "Session not found.")
	case errors.Is(err, engine.ErrGraphNotFound):
		writeError(w, logger, http.StatusNotFound, "Puzzle graph not found.")
	case errors.As(err, &oracleErr), errors.As(err, &violation):
		logger.Error("Oracle failure", "error", err)
		writeError(w, logger, http.StatusBadGateway,
			"The narrator is temporarily unavailable. Please try again.")
	case errors.As(err, &persistErr):
		logger.Error("Persistence failure", "error", err)
		writeError(w, logger, http.StatusInternalServerError,
			"Your last action may not have been saved. Please retry.")
	default:
		logger.Error("Unexpected error", "error", err)
		writeError(w, logger, http.StatusInternalServerError, "Internal server error.")
	}
}
