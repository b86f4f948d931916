package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

// Pin is a positioned view over one comment during an overlay session.
// Comment is held by reference: the render layer sees every store write.
type Pin struct {
	ID       string
	Position domain.Position
	Comment  *domain.Comment
}

// NewPinID returns a session-unique pin identifier.
func NewPinID() string {
	return "pin-" + uuid.NewString()
}

// Registry is the ordered, in-memory source of truth for rendered pins.
// Lookups for store responses always go through comment ids, never indexes.
type Registry struct {
	mu            sync.RWMutex
	pins          []*Pin
	byID          map[string]*Pin // pin ID -> Pin
	lastHydration time.Time
	newID         func() string
}

// New creates an empty registry.
func New() *Registry {
	return NewWithIDs(NewPinID)
}

// NewWithIDs creates a registry using a custom pin id generator (tests).
func NewWithIDs(gen func() string) *Registry {
	return &Registry{
		byID:  make(map[string]*Pin),
		newID: gen,
	}
}

// Add appends a new pin for comment at pos and returns it.
func (r *Registry) Add(pos domain.Position, comment *domain.Comment) *Pin {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addLocked(pos, comment)
}

func (r *Registry) addLocked(pos domain.Position, comment *domain.Comment) *Pin {
	id := r.newID()
	for r.byID[id] != nil {
		id = r.newID()
	}
	pin := &Pin{ID: id, Position: pos, Comment: comment}
	r.pins = append(r.pins, pin)
	r.byID[id] = pin
	return pin
}

// Replace clears the registry and repopulates it from comments, anchoring
// each pin at the comment's stored position.
func (r *Registry) Replace(comments []*domain.Comment) []*Pin {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Clear and rebuild
	r.pins = make([]*Pin, 0, len(comments))
	r.byID = make(map[string]*Pin, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		r.addLocked(c.Position(), c)
	}
	r.lastHydration = time.Now()

	out := make([]*Pin, len(r.pins))
	copy(out, r.pins)
	return out
}

// Get retrieves a pin by its session id.
func (r *Registry) Get(pinID string) (*Pin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pin, ok := r.byID[pinID]
	return pin, ok
}

// FindByCommentID returns the pin owning the comment with id.
func (r *Registry) FindByCommentID(id int64) (*Pin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, pin := range r.pins {
		if pin.Comment.HasID() && *pin.Comment.ID == id {
			return pin, true
		}
	}
	return nil, false
}

// UpdateComment swaps the comment of the pin whose comment id matches.
// It reports the updated pin, or false when no pin matches.
func (r *Registry) UpdateComment(id int64, comment *domain.Comment) (*Pin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pin := range r.pins {
		if pin.Comment.HasID() && *pin.Comment.ID == id {
			pin.Comment = comment
			return pin, true
		}
	}
	return nil, false
}

// RemoveByCommentID removes exactly the pin whose comment id matches,
// preserving the order of the others.
func (r *Registry) RemoveByCommentID(id int64) (*Pin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, pin := range r.pins {
		if pin.Comment.HasID() && *pin.Comment.ID == id {
			r.pins = append(r.pins[:i:i], r.pins[i+1:]...)
			delete(r.byID, pin.ID)
			return pin, true
		}
	}
	return nil, false
}

// All returns a snapshot of the pins in insertion order.
func (r *Registry) All() []*Pin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Pin, len(r.pins))
	copy(out, r.pins)
	return out
}

// Count returns the number of pins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.pins)
}

// Clear removes every pin.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pins = nil
	r.byID = make(map[string]*Pin)
}

// LastHydration returns when Replace last ran.
func (r *Registry) LastHydration() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastHydration
}
