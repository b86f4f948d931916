package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

// DefaultRetentionInterval is how often closed comments are swept.
const DefaultRetentionInterval = time.Hour

// RetentionCollector deletes comments that have been CLOSED for longer
// than the retention window. A zero window disables it.
type RetentionCollector struct {
	store     store.CommentStore
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRetentionCollector creates a collector over s.
func NewRetentionCollector(
	s store.CommentStore,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *RetentionCollector {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}

	return &RetentionCollector{
		store:     s,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Enabled reports whether a retention window is configured.
func (rc *RetentionCollector) Enabled() bool {
	return rc.retention > 0
}

// Run collects once immediately, then on every tick until ctx is done or
// Stop is called. It returns nil right away when disabled.
func (rc *RetentionCollector) Run(ctx context.Context) error {
	if !rc.Enabled() {
		rc.logger.Debug("retention disabled, closed comments are kept forever")
		return nil
	}

	if _, err := rc.Collect(ctx); err != nil {
		rc.logger.Warn("initial retention sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := rc.Collect(ctx); err != nil {
				rc.logger.Error("retention sweep failed", logger.Error(err))
			}
		case <-rc.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (rc *RetentionCollector) Stop() {
	rc.stopOnce.Do(func() { close(rc.stopCh) })
}

// Collect deletes every CLOSED comment last updated before the window
// and returns how many were removed.
func (rc *RetentionCollector) Collect(ctx context.Context) (int, error) {
	closed, err := rc.store.List(ctx, store.Filter{Status: domain.StatusClosed})
	if err != nil {
		return 0, err
	}

	now := rc.now()
	deleted := 0
	for _, c := range closed {
		if c.UpdatedAt == nil || now.Sub(*c.UpdatedAt) < rc.retention {
			continue
		}

		if err := rc.store.Delete(ctx, c.IDValue()); err != nil {
			// Someone else removed it first.
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			rc.logger.Warn("failed to delete closed comment",
				logger.Int64("id", c.IDValue()),
				logger.Error(err))
			continue
		}

		rc.logger.Info("collected closed comment",
			logger.Int64("id", c.IDValue()),
			logger.String("page_url", c.PageURL),
			logger.String("closed_for", now.Sub(*c.UpdatedAt).Round(time.Second).String()))
		deleted++
	}

	if deleted > 0 {
		rc.logger.Info("retention sweep completed", logger.Int("deleted", deleted))
	} else {
		rc.logger.Debug("no closed comments to collect")
	}
	return deleted, nil
}
