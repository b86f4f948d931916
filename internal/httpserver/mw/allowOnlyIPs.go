package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/utils"
)

// AllowOnlyCIDRS restricts a route to specific IPs/CIDRs (infra endpoints).
// An empty list disables filtering. trustProxy resolves the client IP from
// proxy headers and must only be set behind a trusted reverse proxy.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("AllowOnlyCIDRS: initialized",
		logger.Int("rules", len(allowed)),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("client IP rejected",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
					logger.String("remote_addr", r.RemoteAddr))
				reject(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
