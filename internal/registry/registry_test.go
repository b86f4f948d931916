package registry

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

func comment(id int64, content string) *domain.Comment {
	return &domain.Comment{
		ID:        domain.Int64Ptr(id),
		PageURL:   "https://example.com",
		Content:   content,
		PositionX: float64(id * 10),
		PositionY: float64(id * 20),
	}
}

func TestNew(t *testing.T) {
	reg := New()
	if reg == nil {
		t.Fatal("New() returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("New() should start empty, got %d pins", reg.Count())
	}
}

func TestAdd(t *testing.T) {
	reg := New()

	pin := reg.Add(domain.Position{X: 10, Y: 20}, comment(1, "hello"))
	if !strings.HasPrefix(pin.ID, "pin-") {
		t.Errorf("pin id = %q, want pin- prefix", pin.ID)
	}
	if got, ok := reg.Get(pin.ID); !ok || got != pin {
		t.Error("Get() did not return the added pin")
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
}

func TestAddNeverReusesPinID(t *testing.T) {
	calls := 0
	reg := NewWithIDs(func() string {
		calls++
		// first two calls collide
		if calls <= 2 {
			return "pin-same"
		}
		return fmt.Sprintf("pin-%d", calls)
	})

	a := reg.Add(domain.Position{}, comment(1, "a"))
	b := reg.Add(domain.Position{}, comment(2, "b"))
	if a.ID == b.ID {
		t.Fatalf("duplicate pin id %q", a.ID)
	}
}

func TestReplaceOverwrites(t *testing.T) {
	reg := New()
	reg.Add(domain.Position{}, comment(1, "old"))

	pins := reg.Replace([]*domain.Comment{comment(2, "b"), comment(3, "c")})
	if len(pins) != 2 || reg.Count() != 2 {
		t.Fatalf("Replace() should overwrite, got %d pins", reg.Count())
	}
	if _, ok := reg.FindByCommentID(1); ok {
		t.Error("Replace() kept a stale pin")
	}
	if pins[0].Position != (domain.Position{X: 20, Y: 40}) {
		t.Errorf("pin anchored at %+v, want comment position", pins[0].Position)
	}
	if reg.LastHydration().IsZero() {
		t.Error("LastHydration() not set")
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	reg := New()
	data := []*domain.Comment{comment(1, "a"), comment(2, "b")}

	reg.Replace(data)
	reg.Replace(data)

	if reg.Count() != 2 {
		t.Errorf("repeated Replace() duplicated pins: %d", reg.Count())
	}
}

func TestRemoveByCommentIDKeepsOthers(t *testing.T) {
	reg := New()
	reg.Replace([]*domain.Comment{comment(5, "a"), comment(7, "b"), comment(9, "c")})
	before := reg.All()

	removed, ok := reg.RemoveByCommentID(7)
	if !ok || removed.Comment.IDValue() != 7 {
		t.Fatalf("RemoveByCommentID(7) = %v, %v", removed, ok)
	}

	after := reg.All()
	if len(after) != 2 {
		t.Fatalf("Count = %d, want 2", len(after))
	}
	if after[0] != before[0] || after[1] != before[2] {
		t.Error("remaining pins moved or changed")
	}
	if after[0].Comment.Content != "a" || after[1].Comment.Content != "c" {
		t.Error("remaining pin data changed")
	}
	if _, ok := reg.Get(removed.ID); ok {
		t.Error("removed pin still reachable by id")
	}
}

func TestRemoveByCommentIDMissing(t *testing.T) {
	reg := New()
	reg.Replace([]*domain.Comment{comment(1, "a")})

	if _, ok := reg.RemoveByCommentID(42); ok {
		t.Error("RemoveByCommentID(42) should report no match")
	}
	if reg.Count() != 1 {
		t.Error("registry changed on missing id")
	}
}

func TestUpdateComment(t *testing.T) {
	reg := New()
	reg.Replace([]*domain.Comment{comment(1, "a"), comment(2, "b")})

	updated := comment(2, "b2")
	pin, ok := reg.UpdateComment(2, updated)
	if !ok || pin.Comment != updated {
		t.Fatal("UpdateComment() did not swap the comment")
	}
	first, _ := reg.FindByCommentID(1)
	if first.Comment.Content != "a" {
		t.Error("UpdateComment() touched another pin")
	}
	if _, ok := reg.UpdateComment(3, comment(3, "x")); ok {
		t.Error("UpdateComment() on missing id should report no match")
	}
}

func TestUnpersistedCommentsAreNotMatched(t *testing.T) {
	reg := New()
	reg.Add(domain.Position{}, &domain.Comment{Content: "draft"})

	if _, ok := reg.FindByCommentID(0); ok {
		t.Error("a comment without id matched id 0")
	}
}

func TestConcurrentAccess(t *testing.T) {
	reg := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			reg.Add(domain.Position{}, comment(int64(i), "x"))
		}(i)
		go func() {
			defer wg.Done()
			_ = reg.All()
		}()
	}
	wg.Wait()

	if reg.Count() != 50 {
		t.Errorf("Count() = %d, want 50", reg.Count())
	}
}
