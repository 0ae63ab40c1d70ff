package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nvaneck/escape-engine/pkg/storage"
)

// GraphsHandler lists puzzle graphs available for new sessions. Only names
// are exposed; graph contents hold riddle answers and stay server-side.
type GraphsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewGraphsHandler(s storage.Storage, logger *slog.Logger) *GraphsHandler {
	return &GraphsHandler{
		storage: s,
		logger:  logger,
	}
}

type GraphListResponse struct {
	Graphs []string `json:"graphs"`
}

func (h *GraphsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use GET.")
		return
	}

	names, err := h.storage.ListGraphs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list graphs", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list graphs.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, GraphListResponse{Graphs: names})
}
