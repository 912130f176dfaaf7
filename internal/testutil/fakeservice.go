// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todosync/internal/service"
)

// FakeBase is the creation time of the first entity added to a FakeService.
// Each later entity is created one minute after the previous one.
var FakeBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	lists map[string]service.List
	tasks map[string]service.Task
	tick  int

	// Error injection for testing
	ListListsErr    error
	CreateListErr   error
	UpdateListErr   error
	ReorderListsErr error
	DeleteListErr   error
	ListTasksErr    map[string]error // listID -> error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		lists:        make(map[string]service.List),
		tasks:        make(map[string]service.Task),
		ListTasksErr: make(map[string]error),
	}
}

func (f *FakeService) next() time.Time {
	f.tick++
	return FakeBase.Add(time.Duration(f.tick) * time.Minute)
}

// AddList adds a list placed after every existing list.
func (f *FakeService) AddList(id, name string) service.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.next()
	l := service.List{
		ID:         id,
		Name:       name,
		Color:      service.DefaultColor,
		OrderIndex: service.NextOrderIndex(f.snapshotLists()),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.lists[id] = l
	return l
}

// AddTask adds an open task. Later tasks are newer and list first.
func (f *FakeService) AddTask(listID, taskID, title string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.next()
	t := service.Task{
		ID:        taskID,
		Title:     title,
		Priority:  service.PriorityNone,
		ListID:    listID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.tasks[taskID] = t
	return t
}

// AddCompletedTask adds a completed task.
func (f *FakeService) AddCompletedTask(listID, taskID, title string) service.Task {
	t := f.AddTask(listID, taskID, title)
	f.mu.Lock()
	defer f.mu.Unlock()
	t.IsCompleted = true
	f.tasks[taskID] = t
	return t
}

// Task returns a stored task by id.
func (f *FakeService) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	return t, ok
}

// List returns a stored list by id.
func (f *FakeService) List(id string) (service.List, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	l, ok := f.lists[id]
	return l, ok
}

func (f *FakeService) snapshotLists() []service.List {
	out := make([]service.List, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, l)
	}
	service.SortLists(out)
	return out
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.List, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLists(), nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, list service.List) error {
	if f.CreateListErr != nil {
		return f.CreateListErr
	}
	return f.putList(list)
}

// UpdateList implements service.Service.
func (f *FakeService) UpdateList(ctx context.Context, list service.List) error {
	if f.UpdateListErr != nil {
		return f.UpdateListErr
	}
	return f.putList(list)
}

func (f *FakeService) putList(list service.List) error {
	if list.ID == "" {
		return fmt.Errorf("%w: list id is required", service.ErrInvalid)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list.UpdatedAt = f.next()
	f.lists[list.ID] = list
	return nil
}

// ReorderLists implements service.Service.
func (f *FakeService) ReorderLists(ctx context.Context, lists []service.List) error {
	if f.ReorderListsErr != nil {
		return f.ReorderListsErr
	}
	for i, l := range lists {
		if l.OrderIndex == i {
			continue
		}
		l.OrderIndex = i
		if err := f.putList(l); err != nil {
			return err
		}
	}
	return nil
}

// DeleteList implements service.Service. Tasks of the list are removed too.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lists, listID)
	for id, t := range f.tasks {
		if t.ListID == listID {
			delete(f.tasks, id)
		}
	}
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if err, ok := f.ListTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, 0)
	for _, t := range f.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	service.SortTasks(out)
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.Task) error {
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[task.ListID]; !ok {
		return fmt.Errorf("%w: %s", service.ErrListNotFound, task.ListID)
	}
	now := f.next()
	task.CreatedAt = now
	task.UpdatedAt = now
	f.tasks[task.ID] = task
	return nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, task service.Task) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task.UpdatedAt = f.next()
	f.tasks[task.ID] = task
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, taskID)
	return nil
}

var _ service.Service = (*FakeService)(nil)
