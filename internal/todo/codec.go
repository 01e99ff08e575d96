package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// StorageKey is the KV key the task list is saved under.
const StorageKey = "todos"

var errBadShape = errors.New("malformed task list")

func encodeTasks(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

// decodeTasks rejects anything that would break the list invariants:
// non-array payloads, missing or blank titles, duplicate ids and an id of
// math.MaxInt64, which leaves no room for the next generated id.
func decodeTasks(data []byte) ([]Task, error) {
	var raw []struct {
		Title *string `json:"title"`
		ID    *int64  `json:"id"`
		Done  bool    `json:"done"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadShape, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: null", errBadShape)
	}

	tasks := make([]Task, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for i, r := range raw {
		if r.Title == nil || strings.TrimSpace(*r.Title) == "" {
			return nil, fmt.Errorf("%w: entry %d has no title", errBadShape, i)
		}
		if r.ID == nil {
			return nil, fmt.Errorf("%w: entry %d has no id", errBadShape, i)
		}
		if *r.ID == math.MaxInt64 {
			return nil, fmt.Errorf("%w: entry %d id out of range", errBadShape, i)
		}
		if _, dup := seen[*r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", errBadShape, *r.ID)
		}
		seen[*r.ID] = struct{}{}
		tasks = append(tasks, Task{Title: *r.Title, ID: *r.ID, Done: r.Done})
	}
	return tasks, nil
}
