package overlay

import "errors"

var (
	// ErrEmptyContent rejects a create whose content is blank.
	ErrEmptyContent = errors.New("comment content is required")
	// ErrNotPersisted rejects update/delete of a comment without an id.
	ErrNotPersisted = errors.New("comment has not been saved yet")
	// ErrDeleteCancelled is returned when the user declines the delete prompt.
	ErrDeleteCancelled = errors.New("delete cancelled")
	// ErrTornDown is returned by operations after Teardown.
	ErrTornDown = errors.New("overlay torn down")
)

// User-facing messages.
const (
	msgEmptyContent  = "Please enter a comment."
	msgNotPersisted  = "This comment has not been saved yet and cannot be changed."
	msgConfirmDelete = "Are you sure you want to delete this comment?"
)
