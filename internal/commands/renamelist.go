package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
)

func init() {
	Register(&RenameListCmd{})
}

// RenameListCmd implements the renamelist command.
type RenameListCmd struct{}

func (c *RenameListCmd) Name() string       { return "renamelist" }
func (c *RenameListCmd) Aliases() []string  { return nil }
func (c *RenameListCmd) Synopsis() string   { return "Rename a list" }
func (c *RenameListCmd) Usage() string      { return "todosync renamelist <list-name> <new-name>" }
func (c *RenameListCmd) NeedsService() bool { return true }

func (c *RenameListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: usage: todosync renamelist <list-name> <new-name>")
		return exitcode.UserError
	}
	name := strings.TrimSpace(args[0])
	newName := strings.TrimSpace(args[1])
	if name == "" || newName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	lists, err := svc.ListLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	list, err := service.FindList(lists, name)
	if err != nil {
		return reportListError(errOut, name, err)
	}

	// A case-only rename of the same list is allowed.
	other, err := service.FindList(lists, newName)
	if errors.Is(err, service.ErrAmbiguous) || (err == nil && other.ID != list.ID) {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", newName)
		return exitcode.UserError
	}

	list.Name = newName
	if err := svc.UpdateList(ctx, list); err != nil {
		return reportBackendError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
