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
	"todosync/internal/output"
	"todosync/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todosync` (no args) and `todosync list <list-name>`.
type ListCmd struct {
	all bool
	now func() time.Time
}

// SetAll sets the --all flag (for testing).
func (c *ListCmd) SetAll(all bool) {
	c.all = all
}

// SetClock sets the clock used for relative due dates (for testing).
func (c *ListCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return nil }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todosync list [--all] [<list-name>]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	now := time.Now()
	if c.now != nil {
		now = c.now()
	}
	lookup := newTaskLookup(svc)

	// If no args, list the default list and every lettered list
	if len(args) == 0 {
		return c.listAll(ctx, cfg, lookup, now, out, errOut)
	}

	listName := strings.Join(args, " ")
	return c.listOne(ctx, lookup, listName, now, out, errOut)
}

// listAll prints the default list without a header, then one section per
// list with open tasks, lettered a-z.
func (c *ListCmd) listAll(ctx context.Context, cfg *config.Config, lookup *taskLookup, now time.Time, out, errOut io.Writer) int {
	hasAnyTasks := false

	lists, err := lookup.allLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	if len(lists) > 0 {
		defaultList := lists[0]
		open, err := lookup.openTasks(ctx, defaultList.ID)
		if err != nil {
			return reportBackendError(errOut, err)
		}
		for i, task := range open {
			output.FormatTask(out, i+1, task, now)
			hasAnyTasks = true
		}
		if c.all {
			done, _ := lookup.completedTasks(ctx, defaultList.ID)
			for i, task := range done {
				output.FormatCompletedTask(out, i+1, task, false)
				hasAnyTasks = true
			}
		}
	}

	lettered, err := lookup.letteredLists(ctx)
	if errors.Is(err, errTooManyLists) {
		fmt.Fprintln(errOut, "error: too many lists (max 26)")
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	for i, list := range lettered {
		open, _ := lookup.openTasks(ctx, list.ID)
		output.FormatListHeader(out, list.Name, rune('a'+i), false)
		for n, task := range open {
			output.FormatTaskIndented(out, n+1, task, now)
		}
		if c.all {
			done, _ := lookup.completedTasks(ctx, list.ID)
			for n, task := range done {
				output.FormatCompletedTask(out, n+1, task, true)
			}
		}
		hasAnyTasks = true
	}

	if !hasAnyTasks && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}

	return exitcode.Success
}

// listOne prints a single list section (todosync list <name>).
func (c *ListCmd) listOne(ctx context.Context, lookup *taskLookup, listName string, now time.Time, out, errOut io.Writer) int {
	listName = strings.TrimSpace(listName)
	if listName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	list, err := lookup.namedList(ctx, listName)
	if err != nil {
		return reportListError(errOut, listName, err)
	}

	open, err := lookup.openTasks(ctx, list.ID)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	// Print list section (even if empty)
	isDefault := list.ID == lookup.lists[0].ID
	output.FormatListHeader(out, list.Name, 0, isDefault)
	for i, task := range open {
		output.FormatTaskIndented(out, i+1, task, now)
	}
	if c.all {
		done, _ := lookup.completedTasks(ctx, list.ID)
		for i, task := range done {
			output.FormatCompletedTask(out, i+1, task, true)
		}
	}

	return exitcode.Success
}
