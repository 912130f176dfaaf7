package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewList returns a list with a fresh id, placed after every list in existing.
func NewList(name, color string, existing []List, now time.Time) List {
	if color == "" {
		color = DefaultColor
	}
	return List{
		ID:         uuid.NewString(),
		Name:       name,
		Color:      color,
		OrderIndex: NextOrderIndex(existing),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTask returns an open task with a fresh id in the given list.
func NewTask(listID, title string, now time.Time) Task {
	return Task{
		ID:        uuid.NewString(),
		Title:     title,
		Priority:  PriorityNone,
		ListID:    listID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NextOrderIndex returns max(OrderIndex)+1, or 0 for no lists.
func NextOrderIndex(lists []List) int {
	next := 0
	for _, l := range lists {
		if l.OrderIndex >= next {
			next = l.OrderIndex + 1
		}
	}
	return next
}

// SortLists orders lists ascending by OrderIndex. Ties fall back to name, then id.
func SortLists(lists []List) {
	sort.SliceStable(lists, func(i, j int) bool {
		a, b := lists[i], lists[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// SortTasks orders tasks by creation time, newest first. Ties fall back to id.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// OpenTasks returns the incomplete tasks, newest first.
func OpenTasks(tasks []Task) []Task {
	var open []Task
	for _, t := range tasks {
		if !t.IsCompleted {
			open = append(open, t)
		}
	}
	SortTasks(open)
	return open
}

// CompletedTasks returns the completed tasks, most recently updated first.
func CompletedTasks(tasks []Task) []Task {
	var done []Task
	for _, t := range tasks {
		if t.IsCompleted {
			done = append(done, t)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		a, b := done[i], done[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return done
}

// FindList finds a list by name (case-insensitive, trimmed) in a snapshot.
func FindList(lists []List, name string) (List, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []List
	for _, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return List{}, fmt.Errorf("list %w: %s", ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return List{}, fmt.Errorf("%w list name: %s", ErrAmbiguous, name)
	}
}

// ResolveList fetches all lists and finds one by name.
func ResolveList(ctx context.Context, svc Service, name string) (List, error) {
	lists, err := svc.ListLists(ctx)
	if err != nil {
		return List{}, err
	}
	return FindList(lists, name)
}

// DefaultList returns the first list of a sorted snapshot.
func DefaultList(lists []List) (List, error) {
	if len(lists) == 0 {
		return List{}, fmt.Errorf("no lists: %w", ErrNotFound)
	}
	return lists[0], nil
}
