// Package service defines the backend-agnostic interface for list and task operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task. The numeric values are the wire encoding.
type Priority int

const (
	PriorityNone   Priority = -1
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	switch p {
	case PriorityNone:
		return "None"
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// ParsePriority parses a priority name (case-insensitive).
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PriorityNone, nil
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return PriorityNone, fmt.Errorf("invalid priority: %s", s)
}

// DefaultColor is the color tag given to lists created without one.
const DefaultColor = "#007AFF"

// List is a named, ordered container for tasks.
type List struct {
	ID         string
	Name       string
	Color      string // hex, e.g. "#007AFF"
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Task is a unit of work belonging to exactly one list.
type Task struct {
	ID          string
	Title       string
	Notes       *string
	DueDate     *time.Time
	IsCompleted bool
	Priority    Priority
	ListID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
