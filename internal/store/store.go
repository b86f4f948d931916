package store

import (
	"context"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

// Filter narrows a listing. Zero values mean "any".
type Filter struct {
	PageURL string
	Status  domain.Status
}

// CommentStore is the persistence behind the comment API.
// Lookups of unknown ids return domain.ErrNotFound.
// Listings are ordered by id (creation order).
type CommentStore interface {
	// Create assigns the next sequential id and both timestamps.
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	List(ctx context.Context, f Filter) ([]*domain.Comment, error)
	Update(ctx context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error

	// Name identifies the backend in health output.
	Name() string
	Ping(ctx context.Context) error
	Close() error
}
