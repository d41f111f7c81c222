// Package store keeps the local task collection in sync with the Task
// Service. Writes are applied locally first and rolled back if the service
// rejects them.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/cyp0633/tasklens/occurrence"
	"github.com/cyp0633/tasklens/task"
)

// Service is the remote side of the store.
type Service interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, in task.Input) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, u task.Update) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Store implements a task collection backed by a Service. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]task.Task
	order   []string
	service Service
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store. Call Refresh to load the collection.
func New(service Service, opts ...Option) *Store {
	s := &Store{
		tasks:   make(map[string]task.Task),
		service: service,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh replaces the collection with the service's list.
func (s *Store) Refresh(ctx context.Context) error {
	list, err := s.service.ListTasks(ctx)
	if err != nil {
		s.logger.Error("failed to load tasks", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]task.Task, len(list))
	s.order = s.order[:0]
	for _, t := range list {
		if _, dup := s.tasks[t.ID]; !dup {
			s.order = append(s.order, t.ID)
		}
		s.tasks[t.ID] = t.Clone()
	}
	s.logger.Debug("tasks loaded", "count", len(s.order))
	return nil
}

// Tasks returns a copy of the collection in service order.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, task.NotFound(id)
	}
	return t.Clone(), nil
}

// Update applies u locally, sends it, and merges the service's response.
// If the service fails the task is restored to its state before the call.
func (s *Store) Update(ctx context.Context, id string, u task.Update) (task.Task, error) {
	s.mu.Lock()
	snapshot, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return task.Task{}, task.NotFound(id)
	}
	s.tasks[id] = u.Apply(snapshot)
	s.mu.Unlock()

	updated, err := s.service.UpdateTask(ctx, id, u)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if _, still := s.tasks[id]; still {
			s.tasks[id] = snapshot
		}
		s.logger.Warn("update rejected, rolled back", "task", id, "error", err)
		return task.Task{}, err
	}

	merged := u.Apply(snapshot)
	if updated != nil {
		merged = updated.Clone()
	}
	if _, still := s.tasks[id]; still {
		s.tasks[id] = merged
	}
	return merged.Clone(), nil
}

// Create sends in to the service and inserts the created task.
func (s *Store) Create(ctx context.Context, in task.Input) (task.Task, error) {
	if err := in.Validate(); err != nil {
		return task.Task{}, err
	}

	created, err := s.service.CreateTask(ctx, in)
	if err != nil {
		s.logger.Warn("create rejected", "title", in.Title, "error", err)
		return task.Task{}, err
	}
	if created == nil {
		return task.Task{}, &task.Error{Kind: task.KindServiceFailure, Message: "service returned no task"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[created.ID]; !exists {
		s.order = append(s.order, created.ID)
	}
	s.tasks[created.ID] = created.Clone()
	return created.Clone(), nil
}

// Delete removes the task from the service, then from the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	_, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return task.NotFound(id)
	}

	if err := s.service.DeleteTask(ctx, id); err != nil {
		s.logger.Warn("delete rejected", "task", id, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

// SetStatus changes the global status of a task. Cancelling deletes the
// task instead of storing the status.
func (s *Store) SetStatus(ctx context.Context, id string, status task.Status) error {
	if !status.IsValid() {
		return &task.Error{Kind: task.KindInvalidInput, Message: "invalid status " + string(status)}
	}
	if status == task.StatusCancelled {
		return s.Delete(ctx, id)
	}
	_, err := s.Update(ctx, id, task.StatusUpdate(status))
	return err
}

// SetOccurrenceStatus changes the status of one occurrence of a task. For
// non-recurring tasks this is the global status.
func (s *Store) SetOccurrenceStatus(ctx context.Context, id string, d occurrence.Date, status task.Status) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	u, deleteInstead := occurrence.OccurrenceStatusUpdate(&t, d, status)
	if deleteInstead {
		return s.Delete(ctx, id)
	}
	_, err = s.Update(ctx, id, u)
	return err
}

// CompleteOccurrence marks the occurrence of a task on d done or not done.
func (s *Store) CompleteOccurrence(ctx context.Context, id string, d occurrence.Date, done bool) (task.Task, error) {
	t, err := s.Get(id)
	if err != nil {
		return task.Task{}, err
	}
	return s.Update(ctx, id, occurrence.CompletionUpdate(&t, d, done))
}
