package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pinned/internal/logger"
)

const readyzTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Store string `json:"store,omitempty"`
}

// Readyz answers 503 while the comment store cannot be reached.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		if d.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed",
				logger.String("store", d.Store.Name()),
				logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Store: d.Store.Name()})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Store: d.Store.Name()})
	}
}
