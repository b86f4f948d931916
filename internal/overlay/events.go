package overlay

import (
	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

// HandleBackgroundClick opens the creation modal at the click's page
// coordinates, unless the click landed on a pin, a modal or the toggle.
// It reports whether a modal was opened.
func (c *Controller) HandleBackgroundClick(ev render.ClickEvent) bool {
	if !c.Active() {
		return false
	}
	if t := ev.Target; t != nil {
		if t.Closest(render.PinSelector) != nil ||
			t.Closest(render.ModalSelector) != nil ||
			t.Closest(render.ToggleSelector) != nil {
			return false
		}
	}

	pos := domain.Position{X: ev.PageX, Y: ev.PageY}
	c.view.OpenCreateModal(pos, render.CreateHandlers{
		Submit: func(form render.CreateForm) {
			_, _ = c.SubmitCreate(c.ctx, pos, form)
		},
		Cancel: c.view.CloseModal,
	})
	return true
}

func (c *Controller) pinClickHandler(pinID string) func() {
	return func() {
		c.OpenDetails(pinID)
	}
}

// OpenDetails shows the details modal of a pin. It reports false when the
// pin no longer exists.
func (c *Controller) OpenDetails(pinID string) bool {
	pin, ok := c.pins.Get(pinID)
	if !ok {
		return false
	}
	c.view.OpenDetailsModal(pin, render.DetailsHandlers{
		Save: func(u domain.CommentUpdate) {
			_, _ = c.SubmitUpdate(c.ctx, pin, u)
		},
		Delete: func() {
			_ = c.SubmitDelete(c.ctx, pin)
		},
		Close: c.view.CloseModal,
	})
	return true
}
