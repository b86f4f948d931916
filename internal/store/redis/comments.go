package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

const maxTxRetries = 5

// Store handles Redis operations for comments and their indexes
type Store struct {
	client *redis.Client
	now    func() time.Time
}

var _ store.CommentStore = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op: the client is owned by the app.
func (s *Store) Close() error { return nil }

// Create stores a new comment with the next sequential id
func (s *Store) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	id, err := s.client.Incr(ctx, KeyCommentSeq).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate comment id: %w", err)
	}

	out := c.Clone()
	out.ID = domain.Int64Ptr(id)
	out.ApplyDefaults()
	now := s.now().UTC()
	out.CreatedAt = domain.TimePtr(now)
	out.UpdatedAt = domain.TimePtr(now)

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}

	score := redis.Z{Score: float64(id), Member: id}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, CommentKey(id), data, 0)
		pipe.ZAdd(ctx, KeyAllComments, score)
		pipe.ZAdd(ctx, PageKey(out.PageURL), score)
		pipe.ZAdd(ctx, StatusKey(out.Status), score)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	return out, nil
}

// Get retrieves a comment from Redis by ID
func (s *Store) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	return getComment(ctx, s.client, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getComment(ctx context.Context, c getter, id int64) (*domain.Comment, error) {
	data, err := c.Get(ctx, CommentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	var comment domain.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comment: %w", err)
	}
	return &comment, nil
}

// List retrieves comments through the narrowest index matching f
func (s *Store) List(ctx context.Context, f store.Filter) ([]*domain.Comment, error) {
	index := KeyAllComments
	switch {
	case f.PageURL != "":
		index = PageKey(f.PageURL)
	case f.Status != "":
		index = StatusKey(f.Status)
	}

	members, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment IDs: %w", err)
	}
	if len(members) == 0 {
		return []*domain.Comment{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, CommentKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	comments := make([]*domain.Comment, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record (deleted concurrently)
			continue
		}
		var comment domain.Comment
		if err := json.Unmarshal([]byte(raw), &comment); err != nil {
			continue
		}
		if f.Status != "" && comment.Status != f.Status {
			continue
		}
		comments = append(comments, &comment)
	}

	return comments, nil
}

// Update merges u into the stored comment and moves its status index entry
func (s *Store) Update(ctx context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	var updated *domain.Comment

	txf := func(tx *redis.Tx) error {
		current, err := getComment(ctx, tx, id)
		if err != nil {
			return err
		}
		oldStatus := current.Status
		u.Apply(current, s.now())

		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("failed to marshal comment: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, CommentKey(id), data, 0)
			if current.Status != oldStatus {
				pipe.ZRem(ctx, StatusKey(oldStatus), id)
				pipe.ZAdd(ctx, StatusKey(current.Status), redis.Z{Score: float64(id), Member: id})
			}
			return nil
		})
		if err == nil {
			updated = current
		}
		return err
	}

	if err := s.watch(ctx, id, txf); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a comment and every index entry pointing at it
func (s *Store) Delete(ctx context.Context, id int64) error {
	txf := func(tx *redis.Tx) error {
		current, err := getComment(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, CommentKey(id))
			pipe.ZRem(ctx, KeyAllComments, id)
			pipe.ZRem(ctx, PageKey(current.PageURL), id)
			pipe.ZRem(ctx, StatusKey(current.Status), id)
			return nil
		})
		return err
	}

	return s.watch(ctx, id, txf)
}

// watch runs txf under WATCH on the comment key, retrying on contention
func (s *Store) watch(ctx context.Context, id int64, txf func(*redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, CommentKey(id))
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("comment %d: %w", id, err)
	}
	return fmt.Errorf("comment %d: too much contention", id)
}
