package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

type componentStatus struct {
	OK       bool           `json:"ok"`
	Backend  string         `json:"backend,omitempty"`
	Comments *int           `json:"comments,omitempty"`
	ByStatus map[string]int `json:"by_status,omitempty"`
	Latency  string         `json:"latency,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Uptime     string                     `json:"uptime"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports store health and comment counts per status.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
		}

		mode := "operational"
		if !components["store"].OK {
			mode = "degraded"
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       mode,
			Uptime:     d.Now().Sub(d.StartTime).Round(time.Second).String(),
			Components: components,
		})
	}
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, readyzTimeout)
	defer cancel()

	start := time.Now()
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: d.Store.Name(), Error: err.Error()}
	}
	latency := time.Since(start)

	all, err := d.Store.List(ctx, store.Filter{})
	if err != nil {
		return componentStatus{OK: false, Backend: d.Store.Name(), Error: err.Error()}
	}

	total := len(all)
	byStatus := make(map[string]int, len(domain.Statuses))
	for _, s := range domain.Statuses {
		byStatus[string(s)] = 0
	}
	for _, c := range all {
		byStatus[string(c.Status)]++
	}

	return componentStatus{
		OK:       true,
		Backend:  d.Store.Name(),
		Comments: &total,
		ByStatus: byStatus,
		Latency:  latency.String(),
	}
}
