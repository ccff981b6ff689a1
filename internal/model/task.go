package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyDescription is returned when a task has no text to show.
var ErrEmptyDescription = errors.New("task description is empty")

const (
	GlyphDone    = "✅"
	GlyphPending = "❌"
)

// Task is a single todo entry. Its position in the list is its only identity.
// The on-disk field for the description is "task".
type Task struct {
	Description string `json:"task"`
	Done        bool   `json:"done"`
	Date        string `json:"date"` // creation date, D/M/YYYY
}

// NewTask builds a pending task dated at now.
func NewTask(description string, now time.Time) (Task, error) {
	if strings.TrimSpace(description) == "" {
		return Task{}, ErrEmptyDescription
	}
	return Task{Description: description, Date: FormatDate(now)}, nil
}

// Glyph is the status marker used in listings.
func (t Task) Glyph() string {
	if t.Done {
		return GlyphDone
	}
	return GlyphPending
}

// FormatDate renders the calendar date of t as day/month/year without
// leading zeros, e.g. 3/7/2024.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}
