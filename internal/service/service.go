// Package service defines the backend-agnostic interface for list and task operations.
package service

import "context"

// Service defines the interface for list and task backend operations.
// Commands only talk to the document store through this interface.
//
// Implementations hold no entity state between calls: every read goes to the
// store and every write sends a full document.
type Service interface {
	// ListLists returns all lists sorted ascending by OrderIndex.
	// An empty store yields an empty slice.
	ListLists(ctx context.Context) ([]List, error)

	// CreateList writes a new list. UpdatedAt is set by the service.
	CreateList(ctx context.Context, list List) error

	// UpdateList replaces a list document. UpdatedAt is set by the service.
	UpdateList(ctx context.Context, list List) error

	// ReorderLists assigns OrderIndex by slice position and rewrites
	// every list whose index changed.
	ReorderLists(ctx context.Context, lists []List) error

	// DeleteList removes a list and every task that references it.
	// Returns *DegradedError or *CascadeError when the list is gone but
	// its tasks could not all be removed.
	DeleteList(ctx context.Context, listID string) error

	// ListTasks returns the tasks of a list, newest first.
	ListTasks(ctx context.Context, listID string) ([]Task, error)

	// CreateTask writes a new task. The parent list must exist.
	CreateTask(ctx context.Context, task Task) error

	// UpdateTask replaces a task document. UpdatedAt is set by the service.
	UpdateTask(ctx context.Context, task Task) error

	// DeleteTask removes a task. Deleting a missing task is not an error.
	DeleteTask(ctx context.Context, taskID string) error
}
