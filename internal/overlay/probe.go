package overlay

import (
	"context"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
)

// ProbeConnectivity lists the page's comments remotely to pick the
// operating mode, then replaces the registry with whichever store answered.
// Failures never escape: they end up as a mode switch and a log line.
func (c *Controller) ProbeConnectivity(ctx context.Context) Mode {
	if c.closed() {
		return c.Mode()
	}

	mode := ModeConnected
	comments, err := c.remote.ListByPage(ctx, c.cfg.PageURL)
	if err != nil {
		mode = ModeStandalone
		c.log.Warn("remote store unreachable, using local storage", logger.Error(err))

		comments, err = c.local.ReadAll(ctx, c.cfg.PageURL)
		if err != nil {
			c.log.Error("failed to read local comments", logger.Error(err))
			c.view.Alert("Saved comments could not be loaded: " + err.Error())
			comments = []*domain.Comment{}
		}
	}

	c.setMode(mode)
	c.view.SetConnected(mode == ModeConnected)

	c.renderMu.Lock()
	pins := c.pins.Replace(comments)
	if c.Active() {
		c.view.ClearPins()
		c.renderAll()
	}
	c.renderMu.Unlock()

	c.log.Info("connectivity probed",
		logger.String("mode", mode.String()),
		logger.Int("pins", len(pins)))
	return mode
}
