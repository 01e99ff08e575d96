// Package todo holds the task list state: the ordered tasks, the active filter,
// the pending input buffer and the drag-reorder state machine.
package todo

import (
	"fmt"
	"strings"
)

// Task is a single todo entry. ID is the identity; titles may repeat.
type Task struct {
	Title string `json:"title"`
	ID    int64  `json:"id"`
	Done  bool   `json:"done"`
}

type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// ParseFilter accepts the names produced by String, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q", s)
}

// Match reports whether t is visible under f.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Done
	case FilterCompleted:
		return t.Done
	default:
		return true
	}
}
