package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/store/sqlstore"
)

func TestRetentionCollector_Collect(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	s, err := sqlstore.Open(filepath.Join(t.TempDir(), "gc.db"), false, log)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	open, _ := s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "still open"})
	resolved, _ := s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "resolved", Status: domain.StatusResolved})
	closed, _ := s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "closed", Status: domain.StatusClosed})

	rc := NewRetentionCollector(s, log, time.Hour, 30*24*time.Hour)

	// Nothing is old enough yet
	n, err := rc.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 deletions before the window, got %d", n)
	}

	// Jump past the window
	rc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	n, err = rc.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deletion, got %d", n)
	}

	if _, err := s.Get(ctx, closed.IDValue()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Closed comment was not collected: %v", err)
	}
	if _, err := s.Get(ctx, open.IDValue()); err != nil {
		t.Errorf("Open comment was incorrectly removed: %v", err)
	}
	if _, err := s.Get(ctx, resolved.IDValue()); err != nil {
		t.Errorf("Resolved comment was incorrectly removed: %v", err)
	}
}

func TestRetentionCollector_DisabledReturnsImmediately(t *testing.T) {
	rc := NewRetentionCollector(nil, logger.Nop(), time.Hour, 0)
	if rc.Enabled() {
		t.Fatal("Expected collector to be disabled")
	}

	done := make(chan error, 1)
	go func() { done <- rc.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a disabled collector")
	}
}

func TestRetentionCollector_StopEndsRun(t *testing.T) {
	s, err := sqlstore.Open(filepath.Join(t.TempDir(), "gc.db"), false, logger.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	rc := NewRetentionCollector(s, logger.Nop(), time.Hour, time.Hour)
	done := make(chan error, 1)
	go func() { done <- rc.Run(context.Background()) }()

	rc.Stop()
	rc.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
