package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by every comment store when an id has no record.
var ErrNotFound = errors.New("comment not found")

// Comment is the durable unit describing one annotation pinned on a page.
//
// PageURL, PositionX and PositionY are fixed once the comment exists;
// only the fields carried by CommentUpdate may change afterwards.
type Comment struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is nil until a store persists the comment.
	// Assigned once, never reused.
	ID *int64 `json:"id,omitempty"`

	// PageURL is the full URL the comment is anchored to.
	// It partitions every query.
	PageURL string `json:"pageUrl"`

	// PositionX and PositionY are pixel offsets in page coordinates.
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`

	// ─────────────────────────────
	// Content & triage
	// ─────────────────────────────

	Content  string   `json:"content"`
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Category Category `json:"category,omitempty"`

	// Resolution and AssignedTo are filled in while triaging.
	Resolution string `json:"resolution,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty"`

	// ScreenshotURL optionally points at a capture of the page.
	ScreenshotURL string `json:"screenshotUrl,omitempty"`

	// ─────────────────────────────
	// Authorship
	// ─────────────────────────────

	AuthorName  string `json:"authorName,omitempty"`
	AuthorEmail string `json:"authorEmail,omitempty"`

	// ─────────────────────────────
	// Metadata (set by whichever store persists the record)
	// ─────────────────────────────

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Position is an anchor in page coordinates (not viewport).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position returns the anchor of the comment.
func (c *Comment) Position() Position {
	return Position{X: c.PositionX, Y: c.PositionY}
}

// HasID reports whether the comment has been persisted by a store.
func (c *Comment) HasID() bool {
	return c != nil && c.ID != nil
}

// IDValue returns the id, or 0 when the comment was never persisted.
func (c *Comment) IDValue() int64 {
	if c == nil || c.ID == nil {
		return 0
	}
	return *c.ID
}

// IsSettled reports whether the comment no longer needs attention.
func (c *Comment) IsSettled() bool {
	return c.Status == StatusResolved || c.Status == StatusClosed
}

// ApplyDefaults fills empty triage fields with their defaults.
func (c *Comment) ApplyDefaults() {
	if c.Status == "" {
		c.Status = StatusOpen
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Category == "" {
		c.Category = CategoryGeneral
	}
}

// Clone returns a deep copy so callers can mutate without sharing pointers.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	out := *c
	if c.ID != nil {
		id := *c.ID
		out.ID = &id
	}
	if c.CreatedAt != nil {
		t := *c.CreatedAt
		out.CreatedAt = &t
	}
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}

// Int64Ptr is a small helper for building comments with ids.
func Int64Ptr(v int64) *int64 { return &v }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }

// CommentUpdate is a partial update. Nil fields are left untouched.
// Identity fields (id, pageUrl, positions) are deliberately absent.
type CommentUpdate struct {
	Content    *string   `json:"content,omitempty"`
	Status     *Status   `json:"status,omitempty"`
	Priority   *Priority `json:"priority,omitempty"`
	Category   *Category `json:"category,omitempty"`
	Resolution *string   `json:"resolution,omitempty"`
	AssignedTo *string   `json:"assignedTo,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u CommentUpdate) IsEmpty() bool {
	return u.Content == nil && u.Status == nil && u.Priority == nil &&
		u.Category == nil && u.Resolution == nil && u.AssignedTo == nil
}

// Apply merges the update into c and stamps UpdatedAt with now.
func (u CommentUpdate) Apply(c *Comment, now time.Time) {
	if u.Content != nil {
		c.Content = *u.Content
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Priority != nil {
		c.Priority = *u.Priority
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Resolution != nil {
		c.Resolution = *u.Resolution
	}
	if u.AssignedTo != nil {
		c.AssignedTo = *u.AssignedTo
	}
	c.UpdatedAt = TimePtr(now.UTC())
}
