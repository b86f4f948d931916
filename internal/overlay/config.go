package overlay

import (
	"errors"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/remote"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

// Config is what the host page hands to the overlay. Only APIBaseURL and
// PageURL are required; everything else has a default.
type Config struct {
	APIBaseURL string
	APIPrefix  string
	PageURL    string
	Debug      bool
	Theme      render.Theme
	Corner     render.Corner
	Timeout    time.Duration
}

const (
	DefaultTheme  = render.ThemeLight
	DefaultCorner = render.CornerBottomRight
)

var errNoPageURL = errors.New("overlay: page url is required")

func (c Config) withDefaults() Config {
	if !c.Theme.Valid() {
		c.Theme = DefaultTheme
	}
	if !c.Corner.Valid() {
		c.Corner = DefaultCorner
	}
	if c.Timeout <= 0 {
		c.Timeout = remote.DefaultTimeout
	}
	if c.APIPrefix == "" {
		c.APIPrefix = remote.DefaultAPIPrefix
	}
	return c
}
