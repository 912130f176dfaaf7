package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func init() {
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command (alias: addlist).
type CreateListCmd struct {
	color string
}

// SetColor sets the --color flag (for testing).
func (c *CreateListCmd) SetColor(color string) {
	c.color = color
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "todosync createlist [common flags] [--color <#RRGGBB>] <list-name>"
}
func (c *CreateListCmd) NeedsService() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.color, "color", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	color := strings.TrimSpace(c.color)
	if color != "" && !colorPattern.MatchString(color) {
		fmt.Fprintf(errOut, "error: invalid color: %s (expected #RRGGBB)\n", color)
		return exitcode.UserError
	}

	lists, err := svc.ListLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	// Names are matched case-insensitively, so an ambiguous match also means
	// the name is taken.
	_, err = service.FindList(lists, name)
	if err == nil || errors.Is(err, service.ErrAmbiguous) {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	}

	list := service.NewList(name, strings.ToUpper(color), lists, time.Now())
	if err := svc.CreateList(ctx, list); err != nil {
		return reportBackendError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
