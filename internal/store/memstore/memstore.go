// Package memstore keeps the task list in memory. It backs tests and
// dry runs, where nothing should reach the disk.
package memstore

import (
	"context"

	"github.com/Aarondoran/TerminalTasks/internal/model"
)

type Store struct {
	tasks   []model.Task
	present bool

	// LoadErr and SaveErr, when set, are returned instead of doing the work.
	LoadErr error
	SaveErr error

	Saves int
}

// New returns an absent store; Load yields an empty list until Save is called.
func New() *Store { return &Store{} }

// Seed returns a store that already holds tasks.
func Seed(tasks []model.Task) *Store {
	return &Store{tasks: clone(tasks), present: true}
}

func (s *Store) Name() string     { return "memory" }
func (s *Store) Location() string { return "memory" }

func (s *Store) Load(ctx context.Context) ([]model.Task, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if !s.present {
		return []model.Task{}, nil
	}
	return clone(s.tasks), nil
}

func (s *Store) Save(ctx context.Context, tasks []model.Task) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.tasks = clone(tasks)
	s.present = true
	s.Saves++
	return nil
}

// Snapshot returns what a Load would return, ignoring LoadErr.
func (s *Store) Snapshot() []model.Task { return clone(s.tasks) }

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
