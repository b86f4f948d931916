package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/localstore"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/registry"
	"github.com/MrSnakeDoc/pinned/internal/remote"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

// Mode says which store is authoritative.
type Mode int

const (
	// ModeConnected routes every operation to the remote store.
	ModeConnected Mode = iota
	// ModeStandalone routes every operation to the local store.
	ModeStandalone
)

func (m Mode) String() string {
	if m == ModeStandalone {
		return "standalone"
	}
	return "connected"
}

// Deps are the collaborators owned by a Controller. Nil fields get
// defaults: an HTTP client on cfg.APIBaseURL, an in-memory local store,
// an in-memory document, a logger honouring cfg.Debug, the wall clock
// and random pin ids.
type Deps struct {
	Remote RemoteStore
	Local  LocalStore
	View   View
	Logger logger.Logger
	Now    func() time.Time
	PinIDs func() string
}

// Controller is the overlay state machine. It decides which store is
// authoritative, keeps the pin registry in sync with it and drives the view.
type Controller struct {
	cfg    Config
	remote RemoteStore
	local  LocalStore
	view   View
	log    logger.Logger
	now    func() time.Time
	pins   *registry.Registry

	// renderMu serializes registry snapshots with the drawing of them, so
	// a probe and an activation never interleave their renders.
	// Lock order: renderMu before mu.
	renderMu sync.Mutex

	mu             sync.Mutex
	mode           Mode
	active         bool
	initialized    bool
	tornDown       bool
	removeListener func()
	lastLocalID    int64

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a controller. It performs no I/O and mounts nothing.
func New(cfg Config, deps Deps) (*Controller, error) {
	if cfg.PageURL == "" {
		return nil, errNoPageURL
	}
	cfg = cfg.withDefaults()

	log := deps.Logger
	if log == nil {
		log = logger.NewOverlay(cfg.Debug)
	}

	rs := deps.Remote
	if rs == nil {
		client, err := remote.New(remote.Options{
			BaseURL:   cfg.APIBaseURL,
			APIPrefix: cfg.APIPrefix,
			Timeout:   cfg.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		rs = client
	}

	ls := deps.Local
	if ls == nil {
		ls = localstore.New(localstore.NewMemoryKV())
	}

	view := deps.View
	if view == nil {
		view = render.NewDocument()
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	pins := registry.New()
	if deps.PinIDs != nil {
		pins = registry.NewWithIDs(deps.PinIDs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:    cfg,
		remote: rs,
		local:  ls,
		view:   view,
		log:    log.With(logger.String("page", cfg.PageURL)),
		now:    now,
		pins:   pins,
		mode:   ModeConnected,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Initialize mounts the toggle control and probes connectivity in the
// background. The returned channel is closed once the probe finished.
// Only the first call has any effect.
func (c *Controller) Initialize(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	if c.initialized || c.tornDown {
		c.mu.Unlock()
		c.log.Warn("overlay already initialized")
		close(done)
		return done
	}
	c.initialized = true
	c.mu.Unlock()

	c.view.MountToggle(c.cfg.Theme, c.cfg.Corner, func() { c.Toggle() })
	c.log.Debug("overlay initialized",
		logger.String("theme", string(c.cfg.Theme)),
		logger.String("corner", string(c.cfg.Corner)))

	go func() {
		defer close(done)
		c.ProbeConnectivity(ctx)
	}()
	return done
}

// Toggle flips between inactive and active and reports the new state.
func (c *Controller) Toggle() bool {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return false
	}
	c.active = !c.active
	active := c.active
	c.mu.Unlock()

	if active {
		c.activate()
	} else {
		c.deactivate()
	}
	c.log.Debug("overlay toggled", logger.Bool("active", active))
	return active
}

// The container is created fresh on every activation.
func (c *Controller) activate() {
	c.view.MountOverlay(c.cfg.Theme)
	c.renderAll()

	remove := c.view.AddClickListener(func(ev render.ClickEvent) {
		c.HandleBackgroundClick(ev)
	})

	c.mu.Lock()
	c.removeListener = remove
	c.mu.Unlock()
}

func (c *Controller) deactivate() {
	c.mu.Lock()
	remove := c.removeListener
	c.removeListener = nil
	c.mu.Unlock()

	if remove != nil {
		remove()
	}
	c.view.CloseModal()
	c.view.ClearPins()
	c.view.UnmountOverlay()
}

func (c *Controller) renderAll() {
	for _, pin := range c.pins.All() {
		c.renderPin(pin)
	}
}

func (c *Controller) renderPin(pin *registry.Pin) {
	c.view.RenderPin(pin, c.pinClickHandler(pin.ID))
}

// Teardown deactivates the overlay and removes the toggle control.
// The controller is unusable afterwards.
func (c *Controller) Teardown() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	wasActive := c.active
	c.active = false
	c.tornDown = true
	c.mu.Unlock()

	if wasActive {
		c.deactivate()
	}
	c.view.RemoveToggle()
	c.cancel()
	c.log.Debug("overlay torn down")
}

// Mode returns a snapshot of the operating mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) setMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// Active reports whether the overlay is shown.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Pins returns the registry entries in insertion order.
func (c *Controller) Pins() []*registry.Pin {
	return c.pins.All()
}

// PageURL returns the page the overlay is bound to.
func (c *Controller) PageURL() string {
	return c.cfg.PageURL
}

func (c *Controller) closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tornDown
}

// nextLocalID returns a millisecond timestamp, bumped so that ids handed
// out by this controller are strictly increasing.
func (c *Controller) nextLocalID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.lastLocalID {
		id = c.lastLocalID + 1
	}
	c.lastLocalID = id
	return id
}
