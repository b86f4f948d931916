package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field problem found in a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateNew checks a comment about to be created.
// Empty enums are accepted (defaults apply); unknown values are not.
func ValidateNew(c *Comment) error {
	verr := &ValidationError{}
	if c == nil {
		verr.add("body", "comment is required")
		return verr
	}
	if strings.TrimSpace(c.PageURL) == "" {
		verr.add("pageUrl", "page URL is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		verr.add("content", "comment content is required")
	}
	if c.PositionX < 0 {
		verr.add("positionX", "must be a positive number")
	}
	if c.PositionY < 0 {
		verr.add("positionY", "must be a positive number")
	}
	if c.AuthorEmail != "" && !validEmail(c.AuthorEmail) {
		verr.add("authorEmail", "valid email is required")
	}
	if c.Status != "" && !c.Status.Valid() {
		verr.add("status", "invalid status")
	}
	if c.Priority != "" && !c.Priority.Valid() {
		verr.add("priority", "priority must be LOW, MEDIUM, HIGH or CRITICAL")
	}
	if c.Category != "" && !c.Category.Valid() {
		verr.add("category", "invalid category")
	}
	return verr.orNil()
}

// ValidateUpdate checks a partial update.
func ValidateUpdate(u CommentUpdate) error {
	verr := &ValidationError{}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" {
		verr.add("content", "comment content cannot be empty")
	}
	if u.Status != nil && !u.Status.Valid() {
		verr.add("status", "invalid status")
	}
	if u.Priority != nil && !u.Priority.Valid() {
		verr.add("priority", "priority must be LOW, MEDIUM, HIGH or CRITICAL")
	}
	if u.Category != nil && !u.Category.Valid() {
		verr.add("category", "invalid category")
	}
	return verr.orNil()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>"; only bare addresses are valid here.
	return addr.Address == s
}
