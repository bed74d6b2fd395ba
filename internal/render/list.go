// Package render turns the local task table into terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todosync/internal/task"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	offlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// PendingMarker flags records not yet confirmed by the server.
const PendingMarker = "● pending sync"

// TaskList writes the active and completed sections. Tombstoned
// records are hidden: they are awaiting remote deletion, not display.
func TaskList(w io.Writer, tasks []task.Task) {
	var active, completed []task.Task
	for _, t := range tasks {
		if t.IsDeleted {
			continue
		}
		if t.Status == task.StatusCompleted {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}

	fmt.Fprintln(w, headerStyle.Render("Active Tasks"))
	writeSection(w, active, false)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Completed Tasks"))
	writeSection(w, completed, true)
}

func writeSection(w io.Writer, tasks []task.Task, completed bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
		return
	}

	for _, t := range tasks {
		var b strings.Builder
		fmt.Fprintf(&b, "  [%d] ", t.ID)

		title := t.Title
		if completed {
			title = completedStyle.Render(title)
		}
		b.WriteString(title)

		if !completed {
			b.WriteString(dimStyle.Render("  " + t.Status))
		}
		if t.Dirty() {
			b.WriteString("  " + pendingStyle.Render(PendingMarker))
		}
		fmt.Fprintln(w, b.String())

		if t.Description != "" {
			fmt.Fprintln(w, dimStyle.Render("      "+t.Description))
		}
	}
}

// OfflineNotice writes the banner shown while no connectivity is
// available.
func OfflineNotice(w io.Writer) {
	fmt.Fprintln(w, offlineStyle.Render("You are offline. Changes are saved locally and will sync when you're back online."))
}
