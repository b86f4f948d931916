package overlay

import (
	"context"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/registry"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

// RemoteStore is the subset of the comment API the controller drives.
type RemoteStore interface {
	ListByPage(ctx context.Context, pageURL string) ([]*domain.Comment, error)
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	Update(ctx context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// LocalStore is the per-page fallback store.
type LocalStore interface {
	Append(ctx context.Context, pageURL string, c *domain.Comment) error
	ReadAll(ctx context.Context, pageURL string) ([]*domain.Comment, error)
	UpdateByID(ctx context.Context, pageURL string, id int64, u domain.CommentUpdate) (*domain.Comment, error)
	DeleteByID(ctx context.Context, pageURL string, id int64) (bool, error)
}

// View materializes controller state. It never owns state of its own
// beyond the elements it was told to draw.
type View interface {
	MountToggle(theme render.Theme, corner render.Corner, onClick func())
	SetConnected(connected bool)
	RemoveToggle()

	MountOverlay(theme render.Theme)
	UnmountOverlay()

	RenderPin(pin *registry.Pin, onClick func())
	RemovePin(pinID string)
	ClearPins()

	OpenCreateModal(pos domain.Position, h render.CreateHandlers)
	OpenDetailsModal(pin *registry.Pin, h render.DetailsHandlers)
	CloseModal()

	Alert(msg string)
	Confirm(msg string) bool

	// AddClickListener attaches a capture-phase document click listener
	// and returns its remover.
	AddClickListener(fn func(render.ClickEvent)) func()
}

var _ View = (*render.Document)(nil)
