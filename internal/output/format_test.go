package output

import (
	"bytes"
	"testing"
	"time"

	"todosync/internal/service"
	"todosync/internal/testutil"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFormatTaskLines(t *testing.T) {
	soon := now.Add(48 * time.Hour)
	late := now.Add(-3 * time.Hour)

	var buf bytes.Buffer
	FormatTask(&buf, 1, service.Task{Title: "Buy milk", Priority: service.PriorityNone}, now)
	FormatTask(&buf, 2, service.Task{Title: "Pay rent", Priority: service.PriorityHigh, DueDate: &soon}, now)
	FormatTask(&buf, 12, service.Task{Title: "Call\nmom", Priority: service.PriorityLow, DueDate: &late}, now)
	FormatTask(&buf, 3, service.Task{Title: "  ", Priority: service.PriorityNone}, now)

	testutil.Golden(t, "task_lines", buf.Bytes())
}

func TestFormatListSection(t *testing.T) {
	var buf bytes.Buffer
	FormatListHeader(&buf, "Shopping", 'a', false)
	FormatTaskIndented(&buf, 1, service.Task{Title: "Bread", Priority: service.PriorityMedium}, now)
	FormatCompletedTask(&buf, 1, service.Task{Title: "Butter", IsCompleted: true}, true)

	testutil.Golden(t, "list_section", buf.Bytes())
}

func TestFormatListHeaderDefault(t *testing.T) {
	var buf bytes.Buffer
	FormatListHeader(&buf, "", 0, true)

	expected := "------------\n(untitled) [default]\n------------\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	FormatListName(&buf, service.List{Name: "Inbox", Color: "#FF9500"}, true)
	FormatListName(&buf, service.List{Name: "Work"}, false)

	expected := "#FF9500  Inbox [default]\n#007AFF  Work\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatCompletedTaskUnindented(t *testing.T) {
	var buf bytes.Buffer
	FormatCompletedTask(&buf, 10, service.Task{Title: "Done thing"}, false)

	expected := " x10  Done thing\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}
