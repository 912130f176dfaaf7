package commands

import (
	"errors"
	"fmt"
	"io"

	"todosync/internal/exitcode"
	"todosync/internal/service"
)

// reportListError prints a list lookup failure and returns its exit code.
func reportListError(errOut io.Writer, name string, err error) int {
	switch {
	case errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", name)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: list not found: %s\n", name)
		return exitcode.UserError
	default:
		return reportBackendError(errOut, err)
	}
}

// reportBackendError prints a store failure and returns its exit code.
// A list delete that left tasks behind maps to exitcode.Partial.
func reportBackendError(errOut io.Writer, err error) int {
	if service.IsPartial(err) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.Partial
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// reportNoLists prints the hint shown when a command needs a default list.
func reportNoLists(errOut io.Writer) int {
	fmt.Fprintln(errOut, "error: no lists (run: todosync createlist <name>)")
	return exitcode.UserError
}
