package commands

import (
	"context"
	"errors"
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
	Register(&AddCmd{})
}

// AddCmd implements the add command (alias: create).
type AddCmd struct {
	listName string
	due      string
	priority string
	notes    string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

// SetDetails sets the due, priority and notes flags (for testing).
func (c *AddCmd) SetDetails(due, priority, notes string) {
	c.due = due
	c.priority = priority
	c.notes = notes
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todosync add [--list <list-name>] [--due <when>] [--priority <p>] [--notes <text>] <title...>"
}
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.due, "d", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.notes, "notes", "", "")
	fs.StringVar(&c.notes, "n", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	now := time.Now()
	var due *time.Time
	if c.due != "" {
		t, err := parseDue(c.due, now)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		due = &t
	}

	lookup := newTaskLookup(svc)
	var list service.List
	if c.listName != "" {
		list, err = lookup.namedList(ctx, c.listName)
		if err != nil {
			return reportListError(errOut, c.listName, err)
		}
	} else {
		list, err = lookup.defaultList(ctx)
		if errors.Is(err, service.ErrNotFound) {
			return reportNoLists(errOut)
		}
		if err != nil {
			return reportBackendError(errOut, err)
		}
	}

	task := service.NewTask(list.ID, title, now)
	task.Priority = priority
	task.DueDate = due
	if notes := strings.TrimSpace(c.notes); notes != "" {
		task.Notes = &notes
	}

	if err := svc.CreateTask(ctx, task); err != nil {
		if errors.Is(err, service.ErrListNotFound) {
			fmt.Fprintf(errOut, "error: list not found: %s\n", list.Name)
			return exitcode.UserError
		}
		return reportBackendError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
