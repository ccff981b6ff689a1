package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Aarondoran/TerminalTasks/internal/model"
)

func init() {
	SetColorMode("never")
}

func TestTaskLine(t *testing.T) {
	tests := []struct {
		name string
		task model.Task
		want string
	}{
		{"pending", model.Task{Description: "buy milk", Date: "3/7/2024"}, "1. buy milk ❌ 3/7/2024"},
		{"done", model.Task{Description: "buy milk", Done: true, Date: "3/7/2024"}, "1. buy milk ✅ 3/7/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TaskLine(1, tt.task); got != tt.want {
				t.Errorf("TaskLine: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDoneLine(t *testing.T) {
	tests := []struct {
		name string
		task model.Task
		want string
	}{
		{"pending omits date", model.Task{Description: "walk dog", Date: "3/7/2024"}, "2. walk dog ❌"},
		{"done shows date", model.Task{Description: "walk dog", Done: true, Date: "3/7/2024"}, "2. walk dog ✅ (Completed on: 3/7/2024)"},
		{"done without date", model.Task{Description: "walk dog", Done: true}, "2. walk dog ✅"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DoneLine(2, tt.task); got != tt.want {
				t.Errorf("DoneLine: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 5, "█████ 100%"},
		{1, 4, 2, "█░░░░  25%"},
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d): got %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "save: disk full")

	out := buf.String()
	if !strings.Contains(out, "✔ added") {
		t.Errorf("expected OK line, got %q", out)
	}
	if !strings.Contains(out, "✖ save: disk full") {
		t.Errorf("expected Fail line, got %q", out)
	}
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })

	SetTheme("mono")
	if got := Current().BoxChecked; got != "[x]" {
		t.Errorf("mono BoxChecked: got %q", got)
	}
	SetTheme("neon")
	if got := Current().Name; got != "neon" {
		t.Errorf("expected neon, got %q", got)
	}
	SetTheme("unknown")
	if got := Current().Name; got != "classic" {
		t.Errorf("expected fallback to classic, got %q", got)
	}
}

func TestPanelString(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })
	SetTheme("mono")

	out := PanelString([]string{"hello", "a"})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "┌") || !strings.Contains(lines[1], "hello") {
		t.Errorf("unexpected panel: %q", out)
	}
}
