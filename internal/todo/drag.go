package todo

import "slices"

// DragStart marks the task with the given id as being dragged. A start while
// another drag is in progress replaces it.
func (s *Store) DragStart(id int64) {
	s.mutate(func() (bool, bool) {
		if s.dragging && s.dragID == id {
			return false, false
		}
		s.dragID, s.dragging = id, true
		return true, false
	})
}

// DragOver reports that a drop is allowed over any task. It never changes state.
func (s *Store) DragOver() bool {
	return true
}

// Drop moves the dragged task to the target's position. Other tasks shift to
// make room. When either task is gone, or the target is the dragged task
// itself, the order is left alone. The drag state is cleared in every case.
func (s *Store) Drop(targetID int64) {
	s.mutate(func() (bool, bool) {
		if !s.dragging {
			return false, false
		}
		dragID := s.dragID
		s.dragID, s.dragging = 0, false

		from, to := s.indexLocked(dragID), s.indexLocked(targetID)
		if from < 0 || to < 0 || from == to {
			return true, false
		}
		t := s.tasks[from]
		s.tasks = slices.Delete(s.tasks, from, from+1)
		s.tasks = slices.Insert(s.tasks, to, t)
		s.log.Debug("reordered task", "id", dragID, "from", from, "to", to)
		return true, true
	})
}

// DragEnd cancels any drag in progress.
func (s *Store) DragEnd() {
	s.mutate(func() (bool, bool) {
		if !s.dragging {
			return false, false
		}
		s.dragID, s.dragging = 0, false
		return true, false
	})
}

// Dragging returns the id of the task being dragged, if any.
func (s *Store) Dragging() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragID, s.dragging
}
