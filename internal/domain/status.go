package domain

import (
	"fmt"
	"strings"
)

// Status is the triage state of a comment.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Priority orders comments by urgency.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Category classifies what the comment is about.
type Category string

const (
	CategoryBug         Category = "BUG"
	CategoryFeature     Category = "FEATURE"
	CategoryImprovement Category = "IMPROVEMENT"
	CategoryQuestion    Category = "QUESTION"
	CategoryGeneral     Category = "GENERAL"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Priorities lists every priority in display order (default first).
var Priorities = []Priority{PriorityMedium, PriorityLow, PriorityHigh, PriorityCritical}

// Categories lists every category in display order (default first).
var Categories = []Category{CategoryGeneral, CategoryBug, CategoryFeature, CategoryImprovement, CategoryQuestion}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts any casing and "in-progress" style separators.
func ParseStatus(s string) (Status, error) {
	v := Status(normalizeEnum(s))
	if !v.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return v, nil
}

// ParsePriority accepts any casing.
func ParsePriority(s string) (Priority, error) {
	v := Priority(normalizeEnum(s))
	if !v.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return v, nil
}

// ParseCategory accepts any casing.
func ParseCategory(s string) (Category, error) {
	v := Category(normalizeEnum(s))
	if !v.Valid() {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return v, nil
}

func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}
