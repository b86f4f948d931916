package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL}, logger.Nop())
	require.NoError(t, err)
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		wantErr bool
	}{
		{"absolute", "http://localhost:8080", false},
		{"trailing slash", "https://api.example.test/", false},
		{"no scheme", "localhost:8080", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{BaseURL: tt.base}, logger.Nop())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListByPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/comments", r.URL.Path)
		assert.Equal(t, "https://app.test/a?b=1", r.URL.Query().Get("pageUrl"))
		_ = json.NewEncoder(w).Encode([]domain.Comment{{ID: domain.Int64Ptr(3), Content: "hi"}})
	})

	got, err := c.ListByPage(context.Background(), "https://app.test/a?b=1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].IDValue())
}

func TestListNullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	got, err := c.ListByStatus(context.Background(), domain.StatusOpen)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in domain.Comment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = domain.Int64Ptr(1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})

	out, err := c.Create(context.Background(), &domain.Comment{PageURL: "https://a.test", Content: "hello", PositionX: 10, PositionY: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.IDValue())
	assert.Equal(t, "hello", out.Content)
	assert.Equal(t, 10.0, out.PositionX)
}

func TestCreateWithoutIDFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	out, err := c.Create(context.Background(), &domain.Comment{PageURL: "https://a.test", Content: "hello"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestUpdateSendsPartialBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/comments/9", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"status": "RESOLVED"}, raw)

		_ = json.NewEncoder(w).Encode(domain.Comment{ID: domain.Int64Ptr(9), Status: domain.StatusResolved})
	})

	status := domain.StatusResolved
	out, err := c.Update(context.Background(), 9, domain.CommentUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, out.Status)
}

func TestDeleteNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.Delete(context.Background(), 4))
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"comment not found"}`, http.StatusNotFound)
	})

	_, err := c.Get(context.Background(), 12)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, c.Delete(context.Background(), 12), domain.ErrNotFound)
}

func TestServerErrorIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.ListByPage(context.Background(), "https://a.test")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "boom", se.Body)
	assert.False(t, IsNotFound(err))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, logger.Nop())
	require.NoError(t, err)

	_, err = c.ListByPage(context.Background(), "https://a.test")
	assert.Error(t, err)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url}, logger.Nop())
	require.NoError(t, err)

	_, err = c.ListByPage(context.Background(), "https://a.test")
	assert.Error(t, err)
	assert.False(t, IsNotFound(err))
}
