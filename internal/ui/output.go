// Package ui renders task listings and status messages for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Aarondoran/TerminalTasks/internal/model"
)

// SetColorMode forces color on ("always") or off ("never"). "auto" keeps
// lipgloss's terminal detection.
func SetColorMode(mode string) {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render("✔ "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render("✖ "+msg))
}

func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Muted.Render(msg))
}

// TaskLine renders "<index>. <task> <glyph> <date>".
func TaskLine(index int, t model.Task) string {
	return fmt.Sprintf("%d. %s %s %s", index, t.Description, t.Glyph(), current.Muted.Render(t.Date))
}

// DoneLine renders "<index>. <task> <glyph>" and, for completed tasks,
// the recorded date.
func DoneLine(index int, t model.Task) string {
	line := fmt.Sprintf("%d. %s %s", index, t.Description, t.Glyph())
	if t.Done && t.Date != "" {
		line += current.Muted.Render(fmt.Sprintf(" (Completed on: %s)", t.Date))
	}
	return line
}

// Header renders the title line with done/pending/total counts.
func Header(done, pending int) string {
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		current.Title.Render("Todos"),
		current.Success.Render("✔"), done,
		current.Pending.Render("•"), pending,
		current.Accent.Render("Total"), done+pending,
	)
}

// ProgressBar renders a Unicode progress bar with a done/total suffix.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s%s %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// PanelString frames lines in the theme's border.
func PanelString(lines []string) string {
	border := lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(lines))
}
