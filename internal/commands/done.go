package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *DoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string      { return "todosync done [--list <list-name>] <ref...>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return setCompleted(ctx, cfg, svc, c.listName, args, true, out, errOut)
}

// UndoneCmd implements the undone command. References number the completed
// tasks of a list, as shown by list --all.
type UndoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *UndoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *UndoneCmd) Name() string       { return "undone" }
func (c *UndoneCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string   { return "Reopen completed tasks" }
func (c *UndoneCmd) Usage() string      { return "todosync undone [--list <list-name>] <ref...>" }
func (c *UndoneCmd) NeedsService() bool { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return setCompleted(ctx, cfg, svc, c.listName, args, false, out, errOut)
}

// setCompleted resolves every reference before writing, so a bad reference
// leaves all tasks untouched.
func setCompleted(ctx context.Context, cfg *config.Config, svc service.Service, listName string, args []string, completed bool, out, errOut io.Writer) int {
	refs, code := parseRefs(args, errOut)
	if code != exitcode.Success {
		return code
	}

	// done picks from open tasks, undone from completed ones.
	tasks, code := resolveTasks(ctx, newTaskLookup(svc), refs, listName, !completed, errOut)
	if code != exitcode.Success {
		return code
	}

	for _, task := range tasks {
		task.IsCompleted = completed
		if err := svc.UpdateTask(ctx, task); err != nil {
			return reportBackendError(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
