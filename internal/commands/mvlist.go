package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
)

func init() {
	Register(&MvListCmd{})
}

// MvListCmd implements the mvlist command. Position 1 makes the list the
// default list.
type MvListCmd struct{}

func (c *MvListCmd) Name() string       { return "mvlist" }
func (c *MvListCmd) Aliases() []string  { return nil }
func (c *MvListCmd) Synopsis() string   { return "Move a list to a new position" }
func (c *MvListCmd) Usage() string      { return "todosync mvlist <list-name> <position>" }
func (c *MvListCmd) NeedsService() bool { return true }

func (c *MvListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MvListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: usage: todosync mvlist <list-name> <position>")
		return exitcode.UserError
	}

	last := args[len(args)-1]
	pos, err := strconv.Atoi(last)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid position: %s\n", last)
		return exitcode.UserError
	}
	name := strings.TrimSpace(strings.Join(args[:len(args)-1], " "))

	lists, err := svc.ListLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}
	if pos < 1 || pos > len(lists) {
		fmt.Fprintf(errOut, "error: position out of range: %d\n", pos)
		return exitcode.UserError
	}

	list, err := service.FindList(lists, name)
	if err != nil {
		return reportListError(errOut, name, err)
	}

	reordered := make([]service.List, 0, len(lists))
	for _, l := range lists {
		if l.ID != list.ID {
			reordered = append(reordered, l)
		}
	}
	reordered = append(reordered[:pos-1], append([]service.List{list}, reordered[pos-1:]...)...)

	if err := svc.ReorderLists(ctx, reordered); err != nil {
		return reportBackendError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
