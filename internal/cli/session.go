package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/config"
	"github.com/MrSnakeDoc/pinned/internal/localstore"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/overlay"
	"github.com/MrSnakeDoc/pinned/internal/redis"
	"github.com/MrSnakeDoc/pinned/internal/registry"
	"github.com/MrSnakeDoc/pinned/internal/render"
	"github.com/MrSnakeDoc/pinned/internal/utils"
)

// Session is one initialized overlay bound to a terminal.
type Session struct {
	ctx  context.Context
	cfg  *config.Overlay
	ctrl *overlay.Controller
	doc  *render.Document
	log  logger.Logger

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	alertsSeen int
	closers    []func()
}

func (c *CLI) open(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (*Session, error) {
	cfg, err := config.LoadOverlay(c.Config)
	if err != nil {
		return nil, err
	}
	if err := c.applyFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewOverlay(cfg.Debug)
	s := &Session{
		ctx:    ctx,
		cfg:    cfg,
		doc:    render.NewDocument(),
		log:    log,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}

	local, err := s.openLocal()
	if err != nil {
		s.Close()
		return nil, err
	}

	ctrl, err := overlay.New(overlay.Config{
		APIBaseURL: cfg.APIBaseURL,
		APIPrefix:  cfg.APIPrefix,
		PageURL:    cfg.PageURL,
		Debug:      cfg.Debug,
		Theme:      render.Theme(cfg.Theme),
		Corner:     render.Corner(cfg.Corner),
		Timeout:    cfg.Timeout,
	}, overlay.Deps{
		Local:  local,
		View:   s.doc,
		Logger: log,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.ctrl = ctrl
	s.closers = append(s.closers, ctrl.Teardown)

	<-ctrl.Initialize(ctx)
	s.flushAlerts()
	return s, nil
}

func (c *CLI) applyFlags(cfg *config.Overlay) error {
	if c.API != "" {
		cfg.APIBaseURL = c.API
	}
	if c.Page != "" {
		cfg.PageURL = c.Page
	}
	if c.Local != "" {
		cfg.Local.Backend = c.Local
	}
	if c.Debug {
		cfg.Debug = true
	}
	if c.Theme != "" {
		cfg.Theme = c.Theme
	}
	if c.Corner != "" {
		cfg.Corner = c.Corner
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}

func (s *Session) openLocal() (*localstore.Store, error) {
	lc := s.cfg.Local
	switch lc.Backend {
	case config.LocalMemory:
		return localstore.New(localstore.NewMemoryKV()), nil

	case config.LocalRedis:
		client, err := redis.New(s.ctx, redis.QuickOptions(lc.RedisAddr, lc.RedisPassword, lc.RedisDB), s.log)
		if err != nil {
			return nil, fmt.Errorf("local redis store: %w", err)
		}
		s.closers = append(s.closers, func() { utils.CloseLogged(client, "local redis", s.log) })
		return localstore.New(localstore.NewRedisKV(client, lc.Quota)), nil

	default:
		kv, err := localstore.NewFileKV(lc.Path, lc.Quota)
		if err != nil {
			return nil, err
		}
		s.log.Debug("local store", logger.String("path", kv.Path()))
		return localstore.New(kv), nil
	}
}

// Close tears the overlay down and releases the local store.
func (s *Session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
	_ = s.log.Sync()
}

// flushAlerts prints alerts raised since the last call and reports
// whether there were any.
func (s *Session) flushAlerts() bool {
	alerts := s.doc.Alerts()
	fresh := alerts[s.alertsSeen:]
	s.alertsSeen = len(alerts)
	for _, a := range fresh {
		fmt.Fprintf(s.errOut, "⚠️  %s\n", a)
	}
	return len(fresh) > 0
}

// confirm asks on the terminal; anything but y/yes declines.
func (s *Session) confirm(msg string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", msg)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *Session) pinByCommentID(id int64) (*registry.Pin, error) {
	for _, p := range s.ctrl.Pins() {
		if p.Comment.IDValue() == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no comment %d on %s", id, s.cfg.PageURL)
}
