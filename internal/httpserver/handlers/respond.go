package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details ...domain.FieldError) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeStoreError maps store failures to HTTP answers. Anything that is
// not a known sentinel is logged and hidden behind a 500.
func writeStoreError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "Comment not found")
		return
	}
	log.Error("comment store failure",
		logger.String("op", op),
		logger.Error(err))
	writeError(w, http.StatusInternalServerError, "Failed to "+op+" comment")
}
