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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todosync help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todosync                                  List open tasks in every list
  todosync list [--all] [<list-name>]       List tasks (--all adds completed ones)
  todosync add [--list <list-name>] [--due <when>] [--priority <p>] [--notes <text>] <title...>
  todosync create ...                       Same as add
  todosync edit [--list <list-name>] [--title <t>] [--notes <n>] [--due <when>] [--priority <p>] <ref>
  todosync done [--list <list-name>] <ref...>
  todosync undone [--list <list-name>] <ref...>
  todosync rm [--list <list-name>] <ref...>
  todosync lists
  todosync createlist [--color <#RRGGBB>] <list-name>
  todosync addlist ...                      Same as createlist
  todosync renamelist <list-name> <new-name>
  todosync mvlist <list-name> <position>
  todosync rmlist [--force] <list-name>
  todosync login
  todosync logout
  todosync help
  todosync version

Task references:
  3        third open task of the default (first) list
  b2       second open task of the list shown as [b]
  x1       completed tasks are numbered separately; undone takes plain numbers

Due dates:
  2024-06-30, tomorrow, next friday, in 3 days
  --due none clears a due date in edit

Priorities:
  none, low, medium, high

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Configuration (config.yaml in the config directory, or TODOSYNC_* variables):
  database_url       Firebase Realtime Database URL (required)
  credentials_file   Service account key file
  auth_secret        Database secret sent as ?auth=
  timeout            Request timeout (default 10s)
  log_file           Also write logs to this file, rotated
  fanout_limit       Max concurrent task deletes in rmlist (0 = unlimited)
`
