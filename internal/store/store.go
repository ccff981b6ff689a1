// Package store owns the in-memory task list and keeps it in step with a
// storage backend. Every mutation is persisted before it is reported.
//
// There is no file locking: two processes mutating the same storage race and
// the last writer wins.
package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Aarondoran/TerminalTasks/internal/model"
)

// Backend loads and saves the whole task list.
// Load on an absent location returns an empty list and no error.
type Backend interface {
	Name() string
	Location() string
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
}

// Entry pairs a task with its 1-based display index.
type Entry struct {
	Index int
	Task  model.Task
}

type Store struct {
	backend Backend
	tasks   []model.Task
	now     func() time.Time
	log     *log.Logger
}

type Option func(*Store)

// WithClock sets the source of creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a store with an empty list. Call Load before using it.
func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		tasks:   []model.Task{},
		now:     time.Now,
		log:     log.New(io.Discard),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the in-memory list with the backend's contents.
func (s *Store) Load(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.backend.Load(ctx)
	if err != nil {
		return nil, &ReadError{Backend: s.backend.Name(), Location: s.backend.Location(), Err: err}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	s.tasks = tasks
	s.log.Debug("loaded tasks", "backend", s.backend.Name(), "location", s.backend.Location(), "count", len(tasks))
	return s.Tasks(), nil
}

// Save writes the in-memory list, replacing whatever storage held.
func (s *Store) Save(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.tasks); err != nil {
		return &WriteError{Backend: s.backend.Name(), Location: s.backend.Location(), Err: err}
	}
	s.log.Debug("saved tasks", "backend", s.backend.Name(), "location", s.backend.Location(), "count", len(s.tasks))
	return nil
}

// AddTask appends a pending task dated today and saves.
func (s *Store) AddTask(ctx context.Context, description string) (model.Task, error) {
	task, err := model.NewTask(description, s.now())
	if err != nil {
		return model.Task{}, err
	}
	s.tasks = append(s.tasks, task)
	if err := s.Save(ctx); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return model.Task{}, err
	}
	return task, nil
}

// Tasks returns a copy of the list in insertion order.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len reports the number of tasks in memory.
func (s *Store) Len() int { return len(s.tasks) }

// List returns every task with its display index.
func (s *Store) List() []Entry {
	out := make([]Entry, 0, len(s.tasks))
	for i, t := range s.tasks {
		out = append(out, Entry{Index: i + 1, Task: t})
	}
	return out
}

// ListDone returns the same entries as List. Callers render completed
// entries with their recorded date.
func (s *Store) ListDone() []Entry {
	return s.List()
}

// MarkDone sets the task at the 0-based index to done and saves.
// It returns false without saving when the index is out of range.
func (s *Store) MarkDone(ctx context.Context, index int) (bool, error) {
	if index < 0 || index >= len(s.tasks) {
		s.log.Debug("mark done out of range", "index", index, "count", len(s.tasks))
		return false, nil
	}
	prev := s.tasks[index].Done
	s.tasks[index].Done = true
	if err := s.Save(ctx); err != nil {
		s.tasks[index].Done = prev
		return false, err
	}
	return true, nil
}

// ClearAll empties the list and saves, even if it was already empty.
func (s *Store) ClearAll(ctx context.Context) error {
	prev := s.tasks
	s.tasks = []model.Task{}
	if err := s.Save(ctx); err != nil {
		s.tasks = prev
		return err
	}
	return nil
}

// Apply appends added tasks, then marks the 0-based positions done, and
// saves once. Positions may refer to tasks added in the same call. On any
// error nothing is saved and the in-memory list is left as it was.
func (s *Store) Apply(ctx context.Context, added []string, marked []int) error {
	next := s.Tasks()
	now := s.now()
	for _, desc := range added {
		task, err := model.NewTask(desc, now)
		if err != nil {
			return err
		}
		next = append(next, task)
	}
	for _, i := range marked {
		if i < 0 || i >= len(next) {
			return fmt.Errorf("mark done: invalid task index %d", i+1)
		}
		next[i].Done = true
	}
	prev := s.tasks
	s.tasks = next
	if err := s.Save(ctx); err != nil {
		s.tasks = prev
		return err
	}
	return nil
}

// Stats counts completed and pending tasks.
func (s *Store) Stats() (done, pending int) {
	for _, t := range s.tasks {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}
