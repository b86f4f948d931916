package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

// KeyPrefix namespaces per-page comment lists away from unrelated data.
const KeyPrefix = "ui-comments-"

// Key returns the storage key holding the comments of pageURL.
func Key(pageURL string) string {
	return KeyPrefix + pageURL
}

// Store is the local fallback store: one comment list per page URL.
// It assigns nothing on append; callers supply ids and timestamps.
type Store struct {
	kv  KV
	mu  sync.Mutex
	now func() time.Time
}

// New creates a store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// WithClock overrides the time source used to stamp updatedAt (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Append adds c to the list of its page.
func (s *Store) Append(ctx context.Context, pageURL string, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Update(ctx, Key(pageURL), func(old []byte, ok bool) ([]byte, error) {
		comments, err := decode(old, ok)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c.Clone())
		return encode(comments)
	})
}

// ReadAll returns every comment of pageURL; an absent key is an empty list.
func (s *Store) ReadAll(ctx context.Context, pageURL string) ([]*domain.Comment, error) {
	data, ok, err := s.kv.Get(ctx, Key(pageURL))
	if err != nil {
		return nil, err
	}
	return decode(data, ok)
}

// UpdateByID merges u into the comment with id and stamps updatedAt.
// It returns the merged comment, or nil when the id is absent (no-op).
func (s *Store) UpdateByID(ctx context.Context, pageURL string, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var merged *domain.Comment
	err := s.kv.Update(ctx, Key(pageURL), func(old []byte, ok bool) ([]byte, error) {
		comments, err := decode(old, ok)
		if err != nil {
			return nil, err
		}
		for _, c := range comments {
			if c.HasID() && *c.ID == id {
				u.Apply(c, s.now())
				merged = c.Clone()
				break
			}
		}
		if merged == nil {
			return old, nil
		}
		return encode(comments)
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// DeleteByID removes the comment with id. It reports whether an entry was
// removed; an absent id is a no-op.
func (s *Store) DeleteByID(ctx context.Context, pageURL string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	err := s.kv.Update(ctx, Key(pageURL), func(old []byte, ok bool) ([]byte, error) {
		comments, err := decode(old, ok)
		if err != nil {
			return nil, err
		}
		kept := comments[:0]
		for _, c := range comments {
			if c.HasID() && *c.ID == id {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		if !removed {
			return old, nil
		}
		return encode(kept)
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func decode(data []byte, ok bool) ([]*domain.Comment, error) {
	if !ok || len(data) == 0 {
		return []*domain.Comment{}, nil
	}
	var comments []*domain.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}

func encode(comments []*domain.Comment) ([]byte, error) {
	data, err := json.Marshal(comments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comments: %w", err)
	}
	return data, nil
}
