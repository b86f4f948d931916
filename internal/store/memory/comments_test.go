package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

func TestNewStore(t *testing.T) {
	s := NewStore()
	all, err := s.List(context.Background(), store.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("NewStore() should start empty with a non-nil slice, got %v", all)
	}
}

func TestCreateAssignsIDsAndDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, _ := s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "one"})
	second, _ := s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "two", Priority: domain.PriorityHigh})

	if first.IDValue() != 1 || second.IDValue() != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", first.IDValue(), second.IDValue())
	}
	if first.Status != domain.StatusOpen || first.Category != domain.CategoryGeneral {
		t.Errorf("defaults not applied: %+v", first)
	}
	if second.Priority != domain.PriorityHigh {
		t.Errorf("explicit priority lost: %s", second.Priority)
	}
	if first.CreatedAt == nil || first.UpdatedAt == nil {
		t.Error("timestamps not set")
	}
}

func TestCreateDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	in := &domain.Comment{PageURL: "https://a.test", Content: "original"}
	out, _ := s.Create(ctx, in)
	in.Content = "mutated input"
	out.Content = "mutated output"

	got, _ := s.Get(ctx, 1)
	if got.Content != "original" {
		t.Errorf("stored content = %q, want original", got.Content)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, c := range []*domain.Comment{
		{PageURL: "https://a.test", Content: "a1"},
		{PageURL: "https://b.test", Content: "b1"},
		{PageURL: "https://a.test", Content: "a2", Status: domain.StatusResolved},
	} {
		if _, err := s.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		f    store.Filter
		want []int64
	}{
		{"all", store.Filter{}, []int64{1, 2, 3}},
		{"by page", store.Filter{PageURL: "https://a.test"}, []int64{1, 3}},
		{"by status", store.Filter{Status: domain.StatusResolved}, []int64{3}},
		{"both", store.Filter{PageURL: "https://b.test", Status: domain.StatusResolved}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.f)
			if err != nil {
				t.Fatal(err)
			}
			ids := make([]int64, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.IDValue())
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, _ = s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "draft", PositionX: 3})

	content := "final"
	updated, err := s.Update(ctx, 1, domain.CommentUpdate{Content: &content})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "final" || updated.PositionX != 3 {
		t.Errorf("Update() = %+v", updated)
	}

	if _, err := s.Update(ctx, 2, domain.CommentUpdate{Content: &content}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() missing id error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Create(ctx, &domain.Comment{PageURL: "https://a.test", Content: "x"})
		}()
	}
	wg.Wait()

	if s.Count() != 50 {
		t.Errorf("Count() = %d, want 50", s.Count())
	}
	all, _ := s.List(ctx, store.Filter{})
	if all[len(all)-1].IDValue() != 50 {
		t.Errorf("last id = %d, want 50", all[len(all)-1].IDValue())
	}
}
