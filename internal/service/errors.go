package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a list or task lookup has no match.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name matches more than one list.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrListNotFound is returned when a task references a list that does not exist.
	ErrListNotFound = fmt.Errorf("list %w", ErrNotFound)

	// ErrInvalid is returned for entities that cannot be written (e.g. empty id).
	ErrInvalid = errors.New("invalid entity")
)

// DegradedError reports a cascading delete whose list was removed but whose
// tasks could not be located. The list is gone; tasks may remain.
type DegradedError struct {
	ListID string
	Err    error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("list %s deleted, but associated tasks could not be located/removed: %v", e.ListID, e.Err)
}

func (e *DegradedError) Unwrap() error { return e.Err }

// CascadeError reports a cascading delete where at least one task delete
// failed. Err is the first failure observed; later failures are discarded.
type CascadeError struct {
	ListID string
	TaskID string
	Err    error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("failed to delete one or more tasks for list %s (task %s): %v", e.ListID, e.TaskID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// IsPartial reports whether err describes a cascading delete that removed the
// list but left the store partially cleaned.
func IsPartial(err error) bool {
	var degraded *DegradedError
	var cascade *CascadeError
	return errors.As(err, &degraded) || errors.As(err, &cascade)
}
