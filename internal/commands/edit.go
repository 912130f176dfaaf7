package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was given.
type optString struct {
	set bool
	val string
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.set = true
	o.val = s
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	listName string
	title    optString
	notes    optString
	due      optString
	priority optString
}

// SetListName sets the list name (for testing).
func (c *EditCmd) SetListName(name string) {
	c.listName = name
}

// SetField sets one of the title, notes, due or priority flags (for testing).
func (c *EditCmd) SetField(name, value string) {
	switch name {
	case "title":
		c.title.Set(value)
	case "notes":
		c.notes.Set(value)
	case "due":
		c.due.Set(value)
	case "priority":
		c.priority.Set(value)
	}
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "todosync edit [--list <list-name>] [--title <t>] [--notes <n>] [--due <when>] [--priority <p>] <ref>"
}
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	// Reset so a reused command does not keep fields from an earlier run.
	c.title, c.notes, c.due, c.priority = optString{}, optString{}, optString{}, optString{}

	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.notes, "notes", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.priority, "priority", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if err == ErrTaskRefRequired {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if !c.title.set && !c.notes.set && !c.due.set && !c.priority.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --notes, --due or --priority)")
		return exitcode.UserError
	}

	// Validate every change before touching the store.
	var title string
	if c.title.set {
		title = strings.TrimSpace(c.title.val)
		if title == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
	}
	var priority service.Priority
	if c.priority.set {
		priority, err = service.ParsePriority(c.priority.val)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	var due *time.Time
	if c.due.set && !clearsValue(c.due.val) {
		t, err := parseDue(c.due.val, time.Now())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		due = &t
	}

	tasks, code := resolveTasks(ctx, newTaskLookup(svc), []TaskRef{ref}, c.listName, false, errOut)
	if code != exitcode.Success {
		return code
	}
	task := tasks[0]

	if c.title.set {
		task.Title = title
	}
	if c.notes.set {
		if notes := strings.TrimSpace(c.notes.val); notes != "" {
			task.Notes = &notes
		} else {
			task.Notes = nil
		}
	}
	if c.due.set {
		task.DueDate = due
	}
	if c.priority.set {
		task.Priority = priority
	}

	if err := svc.UpdateTask(ctx, task); err != nil {
		return reportBackendError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
