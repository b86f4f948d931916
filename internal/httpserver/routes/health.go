package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pinned/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/mw"
)

func init() { Register(registerHealth) }

// healthz stays public for container probes; readyz and infra expose store
// details and are limited to the infra CIDRs.
func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	infra := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	infra.Get("/readyz", handlers.Readyz(d))
	infra.Get("/infra", handlers.Infra(d))
}
