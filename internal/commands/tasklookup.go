package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"todosync/internal/exitcode"
	"todosync/internal/service"
)

// maxLetters is the number of list letters available (a-z).
const maxLetters = 26

var (
	errLetterNotFound = errors.New("list letter not found")
	errOutOfRange     = errors.New("task number out of range")
	errTooManyLists   = errors.New("too many lists (max 26)")
)

// taskLookup caches list and task snapshots for one command run, so every
// reference in the run resolves against the same view of the store.
type taskLookup struct {
	svc   service.Service
	lists []service.List
	tasks map[string][]service.Task // listID -> tasks, newest first
}

func newTaskLookup(svc service.Service) *taskLookup {
	return &taskLookup{svc: svc, tasks: make(map[string][]service.Task)}
}

func (l *taskLookup) allLists(ctx context.Context) ([]service.List, error) {
	if l.lists == nil {
		lists, err := l.svc.ListLists(ctx)
		if err != nil {
			return nil, err
		}
		if lists == nil {
			lists = []service.List{}
		}
		l.lists = lists
	}
	return l.lists, nil
}

func (l *taskLookup) tasksOf(ctx context.Context, listID string) ([]service.Task, error) {
	if tasks, ok := l.tasks[listID]; ok {
		return tasks, nil
	}
	tasks, err := l.svc.ListTasks(ctx, listID)
	if err != nil {
		return nil, err
	}
	l.tasks[listID] = tasks
	return tasks, nil
}

func (l *taskLookup) openTasks(ctx context.Context, listID string) ([]service.Task, error) {
	tasks, err := l.tasksOf(ctx, listID)
	if err != nil {
		return nil, err
	}
	return service.OpenTasks(tasks), nil
}

func (l *taskLookup) completedTasks(ctx context.Context, listID string) ([]service.Task, error) {
	tasks, err := l.tasksOf(ctx, listID)
	if err != nil {
		return nil, err
	}
	return service.CompletedTasks(tasks), nil
}

// defaultList returns the first list in display order.
func (l *taskLookup) defaultList(ctx context.Context) (service.List, error) {
	lists, err := l.allLists(ctx)
	if err != nil {
		return service.List{}, err
	}
	return service.DefaultList(lists)
}

// namedList finds a list by name.
func (l *taskLookup) namedList(ctx context.Context, name string) (service.List, error) {
	lists, err := l.allLists(ctx)
	if err != nil {
		return service.List{}, err
	}
	return service.FindList(lists, name)
}

// letteredLists returns the lists after the default one that have open
// tasks, in display order. The first gets letter a, the next b, and so on.
// Past 26 it returns the lettered lists along with errTooManyLists.
func (l *taskLookup) letteredLists(ctx context.Context) ([]service.List, error) {
	lists, err := l.allLists(ctx)
	if err != nil {
		return nil, err
	}

	var lettered []service.List
	for i, list := range lists {
		if i == 0 {
			continue
		}
		open, err := l.openTasks(ctx, list.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list: %s: %w", list.Name, err)
		}
		if len(open) == 0 {
			continue
		}
		if len(lettered) == maxLetters {
			return lettered, errTooManyLists
		}
		lettered = append(lettered, list)
	}
	return lettered, nil
}

// listByLetter resolves a list letter to a list.
func (l *taskLookup) listByLetter(ctx context.Context, letter rune) (service.List, error) {
	lettered, err := l.letteredLists(ctx)
	if err != nil && !errors.Is(err, errTooManyLists) {
		return service.List{}, err
	}
	idx := int(letter - 'a')
	if idx < 0 || idx >= len(lettered) {
		return service.List{}, fmt.Errorf("%w: %c", errLetterNotFound, letter)
	}
	return lettered[idx], nil
}

// task returns the num'th (1-based) open task of a list, or the num'th
// completed task when completed is set.
func (l *taskLookup) task(ctx context.Context, listID string, num int, completed bool) (service.Task, error) {
	var tasks []service.Task
	var err error
	if completed {
		tasks, err = l.completedTasks(ctx, listID)
	} else {
		tasks, err = l.openTasks(ctx, listID)
	}
	if err != nil {
		return service.Task{}, err
	}
	if num < 1 || num > len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", errOutOfRange, num)
	}
	return tasks[num-1], nil
}

// resolveTasks turns references into tasks. listName, when set, replaces
// the default list and may not be combined with lettered references.
// Duplicate references collapse to one task. On failure the error has been
// printed and the exit code is returned.
func resolveTasks(ctx context.Context, lookup *taskLookup, refs []TaskRef, listName string, completed bool, errOut io.Writer) ([]service.Task, int) {
	var tasks []service.Task
	seen := make(map[string]bool)

	for _, ref := range refs {
		if listName != "" && ref.HasLetter {
			fmt.Fprintln(errOut, "error: cannot use both --list and list letter")
			return nil, exitcode.UserError
		}
		if ref.TaskNum < 1 {
			fmt.Fprintf(errOut, "error: task number out of range: %d\n", ref.TaskNum)
			return nil, exitcode.UserError
		}

		var list service.List
		var err error
		switch {
		case listName != "":
			list, err = lookup.namedList(ctx, listName)
			if err != nil {
				return nil, reportListError(errOut, listName, err)
			}
		case ref.HasLetter:
			list, err = lookup.listByLetter(ctx, ref.Letter)
			if errors.Is(err, errLetterNotFound) {
				fmt.Fprintf(errOut, "error: list letter not found: %c\n", ref.Letter)
				return nil, exitcode.UserError
			}
			if err != nil {
				return nil, reportBackendError(errOut, err)
			}
		default:
			list, err = lookup.defaultList(ctx)
			if errors.Is(err, service.ErrNotFound) {
				return nil, reportNoLists(errOut)
			}
			if err != nil {
				return nil, reportBackendError(errOut, err)
			}
		}

		task, err := lookup.task(ctx, list.ID, ref.TaskNum, completed)
		if errors.Is(err, errOutOfRange) {
			fmt.Fprintf(errOut, "error: task number out of range: %d\n", ref.TaskNum)
			return nil, exitcode.UserError
		}
		if err != nil {
			return nil, reportBackendError(errOut, err)
		}

		if !seen[task.ID] {
			seen[task.ID] = true
			tasks = append(tasks, task)
		}
	}
	return tasks, exitcode.Success
}

// parseRefs parses task references, printing any error. The second return
// is the exit code on failure.
func parseRefs(args []string, errOut io.Writer) ([]TaskRef, int) {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return nil, exitcode.UserError
	}
	return refs, exitcode.Success
}
