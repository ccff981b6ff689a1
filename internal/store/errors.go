package store

import (
	"errors"
	"fmt"
)

var (
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
)

// ReadError means storage exists but could not be read or decoded.
// A missing storage location is not a ReadError.
type ReadError struct {
	Backend  string
	Location string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Backend, e.Location, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrStorageRead }

// WriteError means the task list could not be persisted.
type WriteError struct {
	Backend  string
	Location string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %s %s: %v", e.Backend, e.Location, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrStorageWrite }
