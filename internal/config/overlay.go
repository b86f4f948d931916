package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Local fallback backends for the overlay client
const (
	LocalFile   = "file"
	LocalRedis  = "redis"
	LocalMemory = "memory"
)

// Overlay is the overlay client configuration (pinctl).
// Only APIBaseURL is needed; everything else has a default.
type Overlay struct {
	APIBaseURL string        `yaml:"apiBaseUrl"`
	APIPrefix  string        `yaml:"apiPrefix"`
	PageURL    string        `yaml:"pageUrl"`
	Debug      bool          `yaml:"debug"`
	Theme      string        `yaml:"theme"`  // light | dark
	Corner     string        `yaml:"corner"` // top-right | top-left | bottom-right | bottom-left
	Timeout    time.Duration `yaml:"timeout"`

	Local LocalStorage `yaml:"local"`
}

// LocalStorage selects where standalone comments are kept.
type LocalStorage struct {
	Backend       string `yaml:"backend"` // file | redis | memory
	Path          string `yaml:"path"`    // file backend
	Quota         int    `yaml:"quota"`   // bytes, 0 = unlimited
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDb"`
}

// DefaultOverlayPath is read when no explicit path is given (if it exists).
func DefaultOverlayPath() string {
	return filepath.Join(homeDir(), ".pinned", "config.yaml")
}

func defaultOverlay() *Overlay {
	return &Overlay{
		APIPrefix: "/api",
		Theme:     "light",
		Corner:    "bottom-right",
		Timeout:   5 * time.Second,
		Local: LocalStorage{
			Backend: LocalFile,
			Path:    filepath.Join(homeDir(), ".pinned", "local.json"),
			Quota:   5 << 20, // browsers give an origin about 5MB
		},
	}
}

// LoadOverlay builds the client config: defaults, then the YAML file at
// path (or DefaultOverlayPath when path is empty and the file exists),
// then PINCTL_* environment overrides.
func LoadOverlay(path string) (*Overlay, error) {
	cfg := defaultOverlay()

	explicit := path != ""
	if !explicit {
		path = DefaultOverlayPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// {{VAR}} placeholders are resolved from the environment
		data = expandTemplateVariables(data)
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.Local.Path = expandHome(cfg.Local.Path)
	cfg.Theme = strings.ToLower(cfg.Theme)
	cfg.Corner = strings.ToLower(cfg.Corner)
	cfg.Local.Backend = strings.ToLower(cfg.Local.Backend)
	return cfg, nil
}

func (o *Overlay) applyEnv() {
	o.APIBaseURL = getenv("PINCTL_API_URL", o.APIBaseURL)
	o.APIPrefix = getenv("PINCTL_API_PREFIX", o.APIPrefix)
	o.PageURL = getenv("PINCTL_PAGE_URL", o.PageURL)
	o.Debug = mustBool("PINCTL_DEBUG", o.Debug)
	o.Theme = getenv("PINCTL_THEME", o.Theme)
	o.Corner = getenv("PINCTL_CORNER", o.Corner)
	o.Timeout = mustDuration("PINCTL_TIMEOUT", o.Timeout)

	o.Local.Backend = getenv("PINCTL_LOCAL_BACKEND", o.Local.Backend)
	o.Local.Path = getenv("PINCTL_LOCAL_PATH", o.Local.Path)
	o.Local.Quota = getenvInt("PINCTL_LOCAL_QUOTA", o.Local.Quota)
	o.Local.RedisAddr = getenv("PINCTL_REDIS_ADDR", o.Local.RedisAddr)
	o.Local.RedisPassword = getenv("PINCTL_REDIS_PASSWORD", o.Local.RedisPassword)
	o.Local.RedisDB = getenvInt("PINCTL_REDIS_DB", o.Local.RedisDB)
}

// Validate checks the fields needed to start an overlay session.
func (o *Overlay) Validate() error {
	if o.APIBaseURL == "" {
		return errors.New("apiBaseUrl is required (config file, PINCTL_API_URL or --api)")
	}
	if o.PageURL == "" {
		return errors.New("pageUrl is required (config file, PINCTL_PAGE_URL or --page)")
	}
	switch o.Local.Backend {
	case LocalFile:
		if o.Local.Path == "" {
			return errors.New("local.path is required for the file backend")
		}
	case LocalRedis:
		if o.Local.RedisAddr == "" {
			return errors.New("local.redisAddr is required for the redis backend")
		}
	case LocalMemory:
	default:
		return fmt.Errorf("unknown local backend %q", o.Local.Backend)
	}
	return nil
}

var templateVar = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// expandTemplateVariables replaces {{NAME}} with the value of $NAME.
// Example: apiBaseUrl: {{PINNED_API}} -> apiBaseUrl: http://localhost:8080
func expandTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := templateVar.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), strings.TrimPrefix(p, "~"))
	}
	return p
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}
