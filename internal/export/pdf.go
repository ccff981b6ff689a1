// Package export renders the task list to shareable formats.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Aarondoran/TerminalTasks/internal/model"
)

// PDF writes an A4 report of tasks to w. Core PDF fonts have no emoji, so
// status is shown as [x] or [ ].
func PDF(w io.Writer, tasks []model.Task, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Tasks", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+model.FormatDate(generated))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	if len(tasks) == 0 {
		pdf.MultiCell(0, 6, "No tasks to show", "0", "L", false)
	}
	done := 0
	for i, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = "[x]"
			done++
		}
		line := fmt.Sprintf("%d. %s %s   %s", i+1, box, tr(t.Description), t.Date)
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d/%d done", done, len(tasks)))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
