package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

// Store keeps comments in process memory. Everything is lost on restart;
// it backs PINNED_STORE=memory for local development.
type Store struct {
	mu       sync.RWMutex
	comments map[int64]*domain.Comment // ID -> Comment
	lastID   int64
	now      func() time.Time
}

var _ store.CommentStore = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		comments: make(map[int64]*domain.Comment),
		now:      time.Now,
	}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Create stores a copy of c under the next id
func (s *Store) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	out := c.Clone()
	out.ID = domain.Int64Ptr(s.lastID)
	out.ApplyDefaults()
	now := s.now().UTC()
	out.CreatedAt = domain.TimePtr(now)
	out.UpdatedAt = domain.TimePtr(now)

	s.comments[s.lastID] = out
	return out.Clone(), nil
}

// Get retrieves a comment by ID
func (s *Store) Get(_ context.Context, id int64) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

// List returns matching comments ordered by id
func (s *Store) List(_ context.Context, f store.Filter) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if f.PageURL != "" && c.PageURL != f.PageURL {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDValue() < out[j].IDValue() })
	return out, nil
}

// Update merges u into the stored comment
func (s *Store) Update(_ context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Apply(c, s.now())
	return c.Clone(), nil
}

// Delete removes a comment
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// Count returns the number of stored comments
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}
