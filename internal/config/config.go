package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the router
	MaxBodyBytes    int64         // cap on JSON request bodies

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend string // "redis" | "sqlite" | "memory"
	SQLitePath   string // database file when StoreBackend=sqlite
	SQLiteDebug  bool   // log every query

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedOrigins []string // CORS origins allowed to call the API ("*" = any)
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict infra endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// Write rate limiting (per client IP)
	RateLimitBurst  int // bucket size
	RateLimitPerMin int // refill per minute

	// Closed comment retention (0 keeps them forever)
	ClosedRetention   time.Duration
	RetentionInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PINNED_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PINNED_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("PINNED_REQUEST_TIMEOUT", 5*time.Second),
		MaxBodyBytes:    int64(getenvInt("PINNED_MAX_BODY_BYTES", 1<<20)),

		// Logging
		LogLevel:  getenv("PINNED_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PINNED_PRETTY_LOG", true),

		// Storage
		StoreBackend: strings.ToLower(getenv("PINNED_STORE", BackendSQLite)),
		SQLitePath:   getenv("PINNED_SQLITE_PATH", "/data/pinned.db"),
		SQLiteDebug:  mustBool("PINNED_SQLITE_DEBUG", false),

		// Redis settings
		RedisUser:             getenv("PINNED_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("PINNED_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("PINNED_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedOrigins: splitAndTrim(getenv("PINNED_ALLOWED_ORIGINS", "*")),
		AllowedHosts:   splitAndTrim(getenv("PINNED_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("PINNED_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("PINNED_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("PINNED_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("PINNED_RATE_LIMIT_PER_MIN", 60),

		ClosedRetention:   mustDuration("PINNED_CLOSED_RETENTION", 0),
		RetentionInterval: mustDuration("PINNED_RETENTION_INTERVAL", time.Hour),
	}

	switch cfg.StoreBackend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		// Redis settings are only mandatory when Redis holds the comments
		cfg.RedisAddr = requireEnv("PINNED_REDIS_ADDR")
		cfg.RedisDB = requireEnvInt("PINNED_REDIS_DB")
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: PINNED_REDIS_PASSWORD is required when PINNED_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: PINNED_STORE must be %q, %q or %q, got %q", BackendSQLite, BackendRedis, BackendMemory, cfg.StoreBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
