package deps

import (
	"time"

	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time   // for testing, defaults to time.Now
	AllowedHosts    []string           // Host headers allowed to access the API
	AllowedCIDRS    []string           // IPs allowed to access healthz/readyz/infra endpoints
	AllowedOrigins  []string           // Origins allowed to call the API from a browser ("*" for any)
	TrustProxy      bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Store           store.CommentStore // Comment persistence (redis or sqlite)
	RateLimitBurst  int                // Write burst per client IP
	RateLimitPerMin int                // Write refill per client IP per minute
	MaxBodyBytes    int64              // Request body cap for comment writes
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
