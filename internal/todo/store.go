package todo

import (
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todoapp/internal/storage"
)

// Store owns the task list, the filter mode, the pending input buffer and the
// drag state. Every mutating method applies all of its updates, persists, and
// only then emits a single change notification.
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	log      *log.Logger
	ids      idGen
	tasks    []Task
	filter   Filter
	input    string
	dragID   int64
	dragging bool

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func()
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the time source used for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.ids.now = now
		}
	}
}

// WithFilter sets the initial filter mode.
func WithFilter(f Filter) Option {
	return func(s *Store) { s.filter = f }
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		log: log.New(io.Discard),
		ids: idGen{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize replaces the in-memory list with the persisted one. Missing,
// unreadable or malformed data yields an empty list.
func (s *Store) Initialize() []Task {
	var out []Task
	s.mutate(func() (bool, bool) {
		s.tasks = s.loadLocked()
		for _, t := range s.tasks {
			s.ids.observe(t.ID)
		}
		out = slices.Clone(s.tasks)
		return true, false
	})
	return out
}

func (s *Store) loadLocked() []Task {
	data, found, err := s.kv.Load(StorageKey)
	if err != nil {
		s.log.Warn("load tasks failed, starting empty", "err", err)
		return []Task{}
	}
	if !found {
		return []Task{}
	}
	tasks, err := decodeTasks(data)
	if err != nil {
		s.log.Warn("discarding stored tasks", "err", err)
		return []Task{}
	}
	s.log.Debug("loaded tasks", "count", len(tasks))
	return tasks
}

func (s *Store) persistLocked() {
	data, err := encodeTasks(s.tasks)
	if err != nil {
		s.log.Error("encode tasks", "err", err)
		return
	}
	if err := s.kv.Save(StorageKey, data); err != nil {
		s.log.Error("save tasks", "err", err)
	}
}

// mutate runs fn under the store lock. fn reports whether observable state
// changed and whether the task list has to be written back.
func (s *Store) mutate(fn func() (changed, persist bool)) {
	s.mu.Lock()
	changed, persist := fn()
	if persist {
		s.persistLocked()
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Subscribe registers fn to run after every completed mutation. The returned
// func removes the registration.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store) SetInput(v string) {
	s.mutate(func() (bool, bool) {
		if s.input == v {
			return false, false
		}
		s.input = v
		return true, false
	})
}

func (s *Store) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Add appends a new open task. A title that is blank after trimming is
// rejected and nothing changes.
func (s *Store) Add(title string) (Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, false
	}
	var t Task
	s.mutate(func() (bool, bool) {
		t = Task{Title: title, ID: s.ids.next(), Done: false}
		s.tasks = append(s.tasks, t)
		s.input = ""
		return true, true
	})
	s.log.Debug("added task", "id", t.ID, "title", t.Title)
	return t, true
}

// Submit adds the pending input buffer as a task.
func (s *Store) Submit() (Task, bool) {
	return s.Add(s.Input())
}

func (s *Store) Remove(id int64) {
	s.mutate(func() (bool, bool) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, false
		}
		s.tasks = slices.Delete(s.tasks, i, i+1)
		return true, true
	})
}

func (s *Store) Toggle(id int64) {
	s.mutate(func() (bool, bool) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, false
		}
		s.tasks[i].Done = !s.tasks[i].Done
		return true, true
	})
}

// SetFilter changes what VisibleTasks returns. It is never persisted.
func (s *Store) SetFilter(f Filter) {
	s.mutate(func() (bool, bool) {
		if s.filter == f {
			return false, false
		}
		s.filter = f
		return true, false
	})
}

func (s *Store) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Store) ClearCompleted() {
	s.mutate(func() (bool, bool) {
		before := len(s.tasks)
		s.tasks = slices.DeleteFunc(s.tasks, func(t Task) bool { return t.Done })
		removed := before - len(s.tasks)
		return removed > 0, removed > 0
	})
}

// Tasks returns a copy of the full list in order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// VisibleTasks returns the tasks matching the current filter, in list order.
func (s *Store) VisibleTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) UncompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.Done {
			n++
		}
	}
	return n
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// idGen hands out millisecond timestamps, bumped past the last issued id so
// that calls within the same millisecond never collide.
type idGen struct {
	now  func() time.Time
	last int64
}

func (g *idGen) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

func (g *idGen) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
