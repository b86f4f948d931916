package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pinned/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/mw"
)

func init() { Register(registerComments) }

func registerComments(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		Now:               d.TimeNow,
		Logger:            d.Logger,
	})

	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Route("/api/comments", func(r chi.Router) {
		r.Get("/", handlers.ListComments(d))
		r.Get("/{id}", handlers.GetComment(d))

		r.With(limit).Post("/", handlers.CreateComment(d))
		r.With(limit).Put("/{id}", handlers.UpdateComment(d))
		r.With(limit).Delete("/{id}", handlers.DeleteComment(d))
	})
}
