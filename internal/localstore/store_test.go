package localstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

const page = "https://example.com/pricing"

func newComment(id int64, content string) *domain.Comment {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Comment{
		ID:        domain.Int64Ptr(id),
		PageURL:   page,
		Content:   content,
		PositionX: 10,
		PositionY: 20,
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityMedium,
		Category:  domain.CategoryGeneral,
		CreatedAt: domain.TimePtr(now),
		UpdatedAt: domain.TimePtr(now),
	}
}

// backends runs a test against every KV implementation that needs no
// external service.
func backends(t *testing.T) map[string]KV {
	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "local.json"), 0)
	require.NoError(t, err)
	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ui-comments-https://example.com/pricing", Key(page))
}

func TestReadAllAbsentKey(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			comments, err := New(kv).ReadAll(context.Background(), page)
			require.NoError(t, err)
			assert.NotNil(t, comments)
			assert.Empty(t, comments)
		})
	}
}

func TestAppendAndReadAll(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(kv)

			require.NoError(t, s.Append(ctx, page, newComment(1, "hello")))
			require.NoError(t, s.Append(ctx, page, newComment(2, "world")))
			require.NoError(t, s.Append(ctx, "https://example.com/other", newComment(3, "elsewhere")))

			comments, err := s.ReadAll(ctx, page)
			require.NoError(t, err)
			require.Len(t, comments, 2)
			assert.Equal(t, "hello", comments[0].Content)
			assert.Equal(t, int64(2), comments[1].IDValue())
			assert.Equal(t, 10.0, comments[0].PositionX)
			assert.Equal(t, 20.0, comments[0].PositionY)

			// Ids are stable across reads
			again, err := s.ReadAll(ctx, page)
			require.NoError(t, err)
			assert.Equal(t, comments[0].IDValue(), again[0].IDValue())
		})
	}
}

func TestAppendDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryKV())
	c := newComment(1, "hello")
	require.NoError(t, s.Append(ctx, page, c))

	c.Content = "mutated after append"
	comments, err := s.ReadAll(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, "hello", comments[0].Content)
}

func TestUpdateByID(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			stamp := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
			s := New(kv).WithClock(func() time.Time { return stamp })

			require.NoError(t, s.Append(ctx, page, newComment(1, "a")))
			require.NoError(t, s.Append(ctx, page, newComment(2, "b")))

			resolved := domain.StatusResolved
			merged, err := s.UpdateByID(ctx, page, 2, domain.CommentUpdate{Status: &resolved})
			require.NoError(t, err)
			require.NotNil(t, merged)
			assert.Equal(t, domain.StatusResolved, merged.Status)
			assert.Equal(t, "b", merged.Content)
			assert.True(t, merged.UpdatedAt.Equal(stamp))

			comments, err := s.ReadAll(ctx, page)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusOpen, comments[0].Status)
			assert.Equal(t, domain.StatusResolved, comments[1].Status)
		})
	}
}

func TestUpdateByIDMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryKV())
	require.NoError(t, s.Append(ctx, page, newComment(1, "a")))

	content := "x"
	merged, err := s.UpdateByID(ctx, page, 99, domain.CommentUpdate{Content: &content})
	require.NoError(t, err)
	assert.Nil(t, merged)

	comments, err := s.ReadAll(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, "a", comments[0].Content)
}

func TestDeleteByID(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(kv)
			for i := int64(1); i <= 3; i++ {
				require.NoError(t, s.Append(ctx, page, newComment(i, "c")))
			}

			removed, err := s.DeleteByID(ctx, page, 2)
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = s.DeleteByID(ctx, page, 2)
			require.NoError(t, err)
			assert.False(t, removed, "second delete is a no-op")

			comments, err := s.ReadAll(ctx, page)
			require.NoError(t, err)
			require.Len(t, comments, 2)
			assert.Equal(t, int64(1), comments[0].IDValue())
			assert.Equal(t, int64(3), comments[1].IDValue())
		})
	}
}

func TestCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.Set(Key(page), []byte("{not json"))
	s := New(kv)

	_, err := s.ReadAll(ctx, page)
	assert.ErrorIs(t, err, ErrCorrupt)

	err = s.Append(ctx, page, newComment(1, "a"))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.DeleteByID(ctx, page, 1)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	kv, err := NewFileKV(path, 0)
	require.NoError(t, err)

	_, err = New(kv).ReadAll(context.Background(), page)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestQuotaExceeded(t *testing.T) {
	ctx := context.Background()

	mem := NewMemoryKV()
	mem.Quota = 64
	err := New(mem).Append(ctx, page, newComment(1, "this comment is long enough to overflow a tiny quota"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "local.json"), 64)
	require.NoError(t, err)
	err = New(fileKV).Append(ctx, page, newComment(1, "this comment is long enough to overflow a tiny quota"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Nothing was persisted
	comments, err := New(fileKV).ReadAll(ctx, page)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestFileKVSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "local.json")

	a, err := NewFileKV(path, 0)
	require.NoError(t, err)
	b, err := NewFileKV(path, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := int64(1); i <= 10; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			kv := KV(a)
			if i%2 == 0 {
				kv = b
			}
			assert.NoError(t, New(kv).Append(ctx, page, newComment(i, "c")))
		}(i)
	}
	wg.Wait()

	comments, err := New(a).ReadAll(ctx, page)
	require.NoError(t, err)
	assert.Len(t, comments, 10)
}
