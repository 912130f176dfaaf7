// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"todosync/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	indent = "    "
)

// FormatTask formats an open task line for the default list.
// Format: "{N:>4}  {TITLE}{PRIORITY}{DUE}\n"
func FormatTask(w io.Writer, num int, task service.Task, now time.Time) {
	fmt.Fprintf(w, "%4d  %s%s\n", num, normalizeTitle(task.Title), details(task, now))
}

// FormatTaskIndented formats an open task line inside a list section.
func FormatTaskIndented(w io.Writer, num int, task service.Task, now time.Time) {
	fmt.Fprint(w, indent)
	FormatTask(w, num, task, now)
}

// FormatCompletedTask formats a completed task line. Completed tasks are
// numbered separately with an "x" prefix: "  x1  {TITLE}\n".
func FormatCompletedTask(w io.Writer, num int, task service.Task, indented bool) {
	if indented {
		fmt.Fprint(w, indent)
	}
	fmt.Fprintf(w, "%4s  %s\n", "x"+strconv.Itoa(num), normalizeTitle(task.Title))
}

// FormatListHeader formats a list section header. A non-zero letter is shown
// as the reference prefix for the list's tasks.
func FormatListHeader(w io.Writer, name string, letter rune, isDefault bool) {
	title := normalizeListName(name)
	if letter != 0 {
		title = fmt.Sprintf("[%c] %s", letter, title)
	}
	if isDefault {
		title += " [default]"
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list for the lists command: "{COLOR}  {NAME}".
func FormatListName(w io.Writer, list service.List, isDefault bool) {
	name := normalizeListName(list.Name)
	if isDefault {
		name += " [default]"
	}
	color := list.Color
	if color == "" {
		color = service.DefaultColor
	}
	fmt.Fprintf(w, "%s  %s\n", color, name)
}

// details renders the priority marker and due date suffix of a task line.
func details(task service.Task, now time.Time) string {
	var b strings.Builder
	if task.Priority > service.PriorityNone {
		b.WriteString(" ")
		b.WriteString(strings.Repeat("!", int(task.Priority)+1))
	}
	if task.DueDate != nil {
		fmt.Fprintf(&b, " (due %s)", humanize.RelTime(*task.DueDate, now, "ago", "from now"))
	}
	return b.String()
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListName normalizes a list name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeListName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
