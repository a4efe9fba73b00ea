package model

import "fmt"

// ValidationError is returned for malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when a record does not exist or belongs to
// another owner. The two cases are deliberately indistinguishable so
// that callers cannot probe for other users' data.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError is returned when a mutation collides with existing
// state: deleting a category that still has tasks, or reusing a name
// that must be unique.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
