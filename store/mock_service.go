package store

import (
	"context"

	"github.com/cyp0633/tasklens/task"
	"github.com/stretchr/testify/mock"
)

// MockService implements the Service interface for testing
type MockService struct {
	mock.Mock
}

func (m *MockService) ListTasks(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockService) CreateTask(ctx context.Context, in task.Input) (*task.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) UpdateTask(ctx context.Context, id string, u task.Update) (*task.Task, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) DeleteTask(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Helper methods for creating test data ---

// NewMockGoal creates a monthly recurring daily task starting on start.
func NewMockGoal(id, title, start string, completed ...string) task.Task {
	t := task.Task{
		ID:                id,
		Title:             title,
		Status:            task.StatusPending,
		TaskType:          task.TypeMonthly,
		DueDate:           start,
		IsRecurring:       true,
		RecurrencePattern: task.PatternDaily,
		CompletedDates:    completed,
		Urgency:           2,
		Importance:        3,
	}
	t.Reprioritize()
	return t
}

// NewMockTask creates a non-recurring task due on due.
func NewMockTask(id, title string, typ task.Type, due string) task.Task {
	t := task.Task{
		ID:         id,
		Title:      title,
		Status:     task.StatusPending,
		TaskType:   typ,
		DueDate:    due,
		Urgency:    3,
		Importance: 3,
	}
	t.Reprioritize()
	return t
}
