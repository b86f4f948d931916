package overlay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/registry"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

// SubmitCreate persists a new comment anchored at pos and adds its pin.
//
// In connected mode a failed remote create falls back to the local store
// once, for this operation only; the operating mode is left untouched.
func (c *Controller) SubmitCreate(ctx context.Context, pos domain.Position, form render.CreateForm) (*registry.Pin, error) {
	if c.closed() {
		return nil, ErrTornDown
	}

	content := strings.TrimSpace(form.Content)
	if content == "" {
		c.view.Alert(msgEmptyContent)
		return nil, ErrEmptyContent
	}

	candidate := &domain.Comment{
		PageURL:     c.cfg.PageURL,
		PositionX:   pos.X,
		PositionY:   pos.Y,
		Content:     content,
		Status:      domain.StatusOpen,
		Priority:    form.Priority,
		Category:    form.Category,
		AuthorName:  strings.TrimSpace(form.AuthorName),
		AuthorEmail: strings.TrimSpace(form.AuthorEmail),
	}
	candidate.ApplyDefaults()

	var saved *domain.Comment
	if c.Mode() == ModeConnected {
		rec, err := c.remote.Create(ctx, candidate)
		switch {
		case err != nil:
			c.log.Warn("remote create failed, saving locally", logger.Error(err))
		case rec == nil || !rec.HasID():
			c.log.Warn("remote create returned no id, saving locally")
		default:
			saved = rec
		}
	}

	if saved == nil {
		rec, err := c.createLocal(ctx, candidate)
		if err != nil {
			c.log.Error("failed to save comment locally", logger.Error(err))
			c.view.Alert("Failed to save comment: " + err.Error())
			return nil, err
		}
		saved = rec
	}

	c.renderMu.Lock()
	pin := c.pins.Add(pos, saved)
	if c.Active() {
		c.renderPin(pin)
	}
	c.renderMu.Unlock()
	c.view.CloseModal()

	c.log.Debug("comment created",
		logger.Int64("id", saved.IDValue()),
		logger.String("pin", pin.ID))
	return pin, nil
}

func (c *Controller) createLocal(ctx context.Context, candidate *domain.Comment) (*domain.Comment, error) {
	rec := candidate.Clone()
	rec.ID = domain.Int64Ptr(c.nextLocalID())
	now := c.now().UTC()
	rec.CreatedAt = domain.TimePtr(now)
	rec.UpdatedAt = domain.TimePtr(now)

	if err := c.local.Append(ctx, c.cfg.PageURL, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SubmitUpdate applies u to the pin's comment in the authoritative store.
// Failures are reported, never downgraded to the other store.
func (c *Controller) SubmitUpdate(ctx context.Context, pin *registry.Pin, u domain.CommentUpdate) (*domain.Comment, error) {
	if c.closed() {
		return nil, ErrTornDown
	}
	if pin == nil || !pin.Comment.HasID() {
		c.view.Alert(msgNotPersisted)
		return nil, ErrNotPersisted
	}
	id := pin.Comment.IDValue()

	var (
		merged *domain.Comment
		err    error
	)
	switch c.Mode() {
	case ModeConnected:
		merged, err = c.remote.Update(ctx, id, u)
	default:
		merged, err = c.local.UpdateByID(ctx, c.cfg.PageURL, id, u)
		if err == nil && merged == nil {
			err = fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
		}
	}
	if err != nil {
		c.log.Error("failed to update comment", logger.Int64("id", id), logger.Error(err))
		c.view.Alert("Failed to update comment: " + err.Error())
		return nil, err
	}

	// Resolve by id now: the pin may have been deleted meanwhile.
	c.renderMu.Lock()
	if p, ok := c.pins.UpdateComment(id, merged); ok && c.Active() {
		c.renderPin(p)
	}
	c.renderMu.Unlock()
	c.view.CloseModal()

	c.log.Debug("comment updated", logger.Int64("id", id), logger.String("status", string(merged.Status)))
	return merged, nil
}

// SubmitDelete removes the pin's comment from the authoritative store after
// the user confirmed, then drops exactly that pin.
func (c *Controller) SubmitDelete(ctx context.Context, pin *registry.Pin) error {
	if c.closed() {
		return ErrTornDown
	}
	if pin == nil || !pin.Comment.HasID() {
		c.view.Alert(msgNotPersisted)
		return ErrNotPersisted
	}
	if !c.view.Confirm(msgConfirmDelete) {
		return ErrDeleteCancelled
	}
	id := pin.Comment.IDValue()

	var err error
	switch c.Mode() {
	case ModeConnected:
		err = c.remote.Delete(ctx, id)
	default:
		var removed bool
		removed, err = c.local.DeleteByID(ctx, c.cfg.PageURL, id)
		if err == nil && !removed {
			c.log.Debug("comment already absent from local storage", logger.Int64("id", id))
		}
	}
	if err != nil {
		c.log.Error("failed to delete comment", logger.Int64("id", id), logger.Error(err))
		c.view.Alert("Failed to delete comment: " + err.Error())
		return err
	}

	c.renderMu.Lock()
	if p, ok := c.pins.RemoveByCommentID(id); ok {
		c.view.RemovePin(p.ID)
	}
	c.renderMu.Unlock()
	c.view.CloseModal()

	c.log.Debug("comment deleted", logger.Int64("id", id))
	return nil
}

// IsValidationError reports whether err was raised before any store call.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyContent) || errors.Is(err, ErrNotPersisted)
}
