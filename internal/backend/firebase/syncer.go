// Package firebase implements service.Service on top of a Firebase Realtime
// Database style document store.
//
// Lists live under "lists/{id}" and tasks under "tasks/{id}". A task points at
// its list through the listId field; nothing in the store enforces that link,
// so DeleteList cascades by hand.
package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"todosync/internal/codec"
	"todosync/internal/docstore"
	"todosync/internal/service"
)

const (
	// ListsCollection is the store path holding list documents.
	ListsCollection = "lists"

	// TasksCollection is the store path holding task documents.
	TasksCollection = "tasks"
)

// Store is the subset of docstore.Client the syncer needs.
type Store interface {
	Get(ctx context.Context, path string, filter *docstore.Filter) (docstore.RawDocumentSet, error)
	GetItem(ctx context.Context, path string) (json.RawMessage, error)
	Put(ctx context.Context, path string, doc codec.Document) error
	Delete(ctx context.Context, path string) error
}

// Syncer implements service.Service. It keeps no entity state between calls.
type Syncer struct {
	store       Store
	now         func() time.Time
	log         *logrus.Entry
	fanOutLimit int
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClock sets the clock used to stamp updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Syncer) { s.log = log }
}

// WithFanOutLimit caps concurrent task deletes in DeleteList. 0 means unlimited.
func WithFanOutLimit(n int) Option {
	return func(s *Syncer) { s.fanOutLimit = n }
}

// NewSyncer creates a syncer over store.
func NewSyncer(store Store, opts ...Option) *Syncer {
	s := &Syncer{
		store: store,
		now:   time.Now,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ service.Service = (*Syncer)(nil)

// ListLists returns all lists sorted by OrderIndex.
func (s *Syncer) ListLists(ctx context.Context) ([]service.List, error) {
	set, err := s.store.Get(ctx, ListsCollection, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lists: %w", err)
	}

	lists := make([]service.List, 0, len(set.Documents))
	for key, raw := range set.Documents {
		l, err := decode(raw, codec.DecodeList)
		if err != nil {
			s.log.WithField("key", key).WithError(err).Warn("skipping undecodable list")
			continue
		}
		lists = append(lists, l)
	}

	service.SortLists(lists)
	return lists, nil
}

// CreateList writes a new list. A zero CreatedAt is filled with the current time.
func (s *Syncer) CreateList(ctx context.Context, list service.List) error {
	if list.CreatedAt.IsZero() {
		list.CreatedAt = s.now()
	}
	return s.putList(ctx, list)
}

// UpdateList replaces the list document.
func (s *Syncer) UpdateList(ctx context.Context, list service.List) error {
	return s.putList(ctx, list)
}

func (s *Syncer) putList(ctx context.Context, list service.List) error {
	if list.ID == "" {
		return fmt.Errorf("%w: list id is required", service.ErrInvalid)
	}
	list.UpdatedAt = s.stamp(list.CreatedAt)

	if err := s.store.Put(ctx, docstore.Join(ListsCollection, list.ID), codec.EncodeList(list)); err != nil {
		return fmt.Errorf("failed to save list %s: %w", list.ID, err)
	}
	return nil
}

// ReorderLists sets OrderIndex to each list's position and rewrites the
// lists whose index changed. It stops at the first failed write.
func (s *Syncer) ReorderLists(ctx context.Context, lists []service.List) error {
	for i, l := range lists {
		if l.OrderIndex == i {
			continue
		}
		l.OrderIndex = i
		if err := s.putList(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// DeleteList removes a list and then every task whose listId matches it.
//
// The list document goes first. If that fails nothing else is touched. Once
// it is gone, a failure to find the tasks yields *service.DegradedError and a
// failure to delete any of them yields *service.CascadeError with the first
// error seen. Task deletes run concurrently and all of them are attempted,
// even if ctx is cancelled after the list document is gone.
func (s *Syncer) DeleteList(ctx context.Context, listID string) error {
	if listID == "" {
		return fmt.Errorf("%w: list id is required", service.ErrInvalid)
	}
	log := s.log.WithField("list_id", listID)

	if err := s.store.Delete(ctx, docstore.Join(ListsCollection, listID)); err != nil {
		return fmt.Errorf("failed to delete list %s: %w", listID, err)
	}
	log.Debug("list deleted, fetching tasks")

	// The list is gone; the cascade runs to completion from here.
	ctx = context.WithoutCancel(ctx)

	set, err := s.store.Get(ctx, TasksCollection, docstore.Equal(codec.FieldListID, listID))
	if err != nil {
		log.WithError(err).Warn("list deleted but its tasks could not be fetched")
		return &service.DegradedError{ListID: listID, Err: err}
	}
	if len(set.Documents) == 0 {
		return nil
	}

	// Document keys are task ids; deleting by key also clears documents
	// that no longer decode.
	keys := make([]string, 0, len(set.Documents))
	for key := range set.Documents {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	log.WithField("tasks", len(keys)).Debug("deleting tasks")

	var g errgroup.Group
	if s.fanOutLimit > 0 {
		g.SetLimit(s.fanOutLimit)
	}
	for _, key := range keys {
		g.Go(func() error {
			if err := s.store.Delete(ctx, docstore.Join(TasksCollection, key)); err != nil {
				return &service.CascadeError{ListID: listID, TaskID: key, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("list deleted but some tasks remain")
		return err
	}
	return nil
}

// ListTasks returns the tasks of a list, newest first.
func (s *Syncer) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if listID == "" {
		return nil, fmt.Errorf("%w: list id is required", service.ErrInvalid)
	}

	set, err := s.store.Get(ctx, TasksCollection, docstore.Equal(codec.FieldListID, listID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for list %s: %w", listID, err)
	}

	tasks := make([]service.Task, 0, len(set.Documents))
	for key, raw := range set.Documents {
		t, err := decode(raw, codec.DecodeTask)
		if err != nil {
			s.log.WithFields(logrus.Fields{"key": key, "list_id": listID}).WithError(err).Warn("skipping undecodable task")
			continue
		}
		tasks = append(tasks, t)
	}

	service.SortTasks(tasks)
	return tasks, nil
}

// CreateTask writes a new task after checking that its list exists.
func (s *Syncer) CreateTask(ctx context.Context, task service.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}

	raw, err := s.store.GetItem(ctx, docstore.Join(ListsCollection, task.ListID))
	if err != nil {
		return fmt.Errorf("failed to look up list %s: %w", task.ListID, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: %s", service.ErrListNotFound, task.ListID)
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now()
	}
	return s.putTask(ctx, task)
}

// UpdateTask replaces the task document.
func (s *Syncer) UpdateTask(ctx context.Context, task service.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	return s.putTask(ctx, task)
}

func (s *Syncer) putTask(ctx context.Context, task service.Task) error {
	task.UpdatedAt = s.stamp(task.CreatedAt)

	if err := s.store.Put(ctx, docstore.Join(TasksCollection, task.ID), codec.EncodeTask(task)); err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task. A missing task is not an error.
func (s *Syncer) DeleteTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("%w: task id is required", service.ErrInvalid)
	}
	if err := s.store.Delete(ctx, docstore.Join(TasksCollection, taskID)); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}
	return nil
}

// stamp returns the current time, never earlier than createdAt.
func (s *Syncer) stamp(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

func validateTask(t service.Task) error {
	if t.ID == "" {
		return fmt.Errorf("%w: task id is required", service.ErrInvalid)
	}
	if t.ListID == "" {
		return fmt.Errorf("%w: task %s has no list", service.ErrInvalid, t.ID)
	}
	return nil
}

func decode[T any](raw json.RawMessage, fn func(codec.Document) (T, error)) (T, error) {
	doc, err := codec.ParseDocument(raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(doc)
}
