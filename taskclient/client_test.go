package taskclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cyp0633/tasklens/occurrence"
	"github.com/cyp0633/tasklens/store"
	"github.com/cyp0633/tasklens/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is a minimal Task Service backed by a map.
type fakeService struct {
	mu       sync.Mutex
	tasks    map[string]task.Task
	order    []string
	listBody string
	requests []string
}

func newFakeService(tasks ...task.Task) *fakeService {
	f := &fakeService{tasks: make(map[string]task.Task)}
	for _, t := range tasks {
		f.tasks[t.ID] = t
		f.order = append(f.order, t.ID)
	}
	return f
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if r.Header.Get("Authorization") != "Bearer token" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Authentication credentials were not provided."}`))
		return
	}

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/tasks/":
		if f.listBody != "" {
			_, _ = w.Write([]byte(f.listBody))
			return
		}
		list := make([]task.Task, 0, len(f.order))
		for _, id := range f.order {
			list = append(list, f.tasks[id])
		}
		writeJSON(http.StatusOK, list)

	case r.Method == http.MethodPost && r.URL.Path == "/api/tasks/":
		var in task.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		t := task.Task{
			ID: "new", Title: in.Title, Urgency: in.Urgency, Importance: in.Importance,
			TaskType: in.TaskType, DueDate: in.DueDate, Status: task.StatusPending,
		}
		t.Reprioritize()
		f.tasks[t.ID] = t
		f.order = append(f.order, t.ID)
		writeJSON(http.StatusCreated, t)

	case r.Method == http.MethodPatch && r.URL.Path == "/api/tasks/goal/":
		var u task.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			writeJSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		t := u.Apply(f.tasks["goal"])
		f.tasks["goal"] = t
		writeJSON(http.StatusOK, t)

	case r.Method == http.MethodDelete && r.URL.Path == "/api/tasks/goal/":
		delete(f.tasks, "goal")
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodPost && r.URL.Path == "/api/tasks/goal/reanalyze/":
		t := f.tasks["goal"]
		t.Urgency, t.Importance = 4, 4
		t.Reprioritize()
		writeJSON(http.StatusOK, t)

	case r.Method == http.MethodGet && r.URL.Path == "/api/tasks/analytics/":
		writeJSON(http.StatusOK, map[string]any{
			"month":              3,
			"year":               2024,
			"month_name":         "March",
			"total_tasks":        3,
			"completed_tasks":    1,
			"completion_rate":    33.33,
			"priority_breakdown": map[string]int{"Q1": 2, "Q4": 1},
			"status_breakdown":   map[string]int{"completed": 1, "pending": 2},
			"daily_counts":       map[string]int{"2024-03-10": 2},
		})

	default:
		writeJSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
}

func goal() task.Task {
	return task.Task{
		ID: "goal", Title: "run", TaskType: task.TypeMonthly, Status: task.StatusPending,
		DueDate: "2024-03-01T00:00:00Z", IsRecurring: true, RecurrencePattern: task.PatternDaily,
		Urgency: 2, Importance: 3, PriorityQuadrant: task.Q2, PriorityScore: 735,
	}
}

func newClient(t *testing.T, f *fakeService, token string) *Client {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	c, err := New(Options{
		BaseURL: server.URL + "/api",
		Token:   token,
		Timeout: 5 * time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestListTasks(t *testing.T) {
	c := newClient(t, newFakeService(goal()), "token")

	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, goal(), tasks[0])
}

func TestListTasks_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"paginated", `{"count":1,"results":[{"id":"a","title":"x"}]}`, 1},
		{"empty array", `[]`, 0},
		{"object without results", `{"detail":"ok"}`, 0},
		{"scalar", `"nope"`, 0},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeService()
			f.listBody = tt.body
			tasks, err := newClient(t, f, "token").ListTasks(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Len(t, tasks, tt.want)
		})
	}
}

func TestListTasks_Unauthorized(t *testing.T) {
	c := newClient(t, newFakeService(), "wrong")

	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrService)

	var te *task.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Contains(t, te.Error(), "Authentication credentials")
}

func TestCreateUpdateDelete(t *testing.T) {
	f := newFakeService(goal())
	c := newClient(t, f, "token")
	ctx := context.Background()

	created, err := c.CreateTask(ctx, task.Input{Title: "call", Urgency: 4, Importance: 4, TaskType: task.TypeDaily})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, task.Q1, created.PriorityQuadrant)
	assert.Equal(t, 1060, created.PriorityScore)

	completed := task.StatusCompleted
	updated, err := c.UpdateTask(ctx, "goal", task.Update{Status: &completed, CompletionDate: "2024-03-10"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, []string{"2024-03-10"}, updated.CompletedDates)
	assert.Equal(t, task.StatusPending, updated.Status)

	require.NoError(t, c.DeleteTask(ctx, "goal"))

	assert.Equal(t, []string{
		"POST /api/tasks/",
		"PATCH /api/tasks/goal/",
		"DELETE /api/tasks/goal/",
	}, f.requests)
}

func TestUpdateTask_NotFound(t *testing.T) {
	c := newClient(t, newFakeService(), "token")

	_, err := c.UpdateTask(context.Background(), "missing", task.StatusUpdate(task.StatusCompleted))
	var te *task.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, task.KindServiceFailure, te.Kind)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
}

func TestReanalyze(t *testing.T) {
	c := newClient(t, newFakeService(goal()), "token")

	got, err := c.Reanalyze(context.Background(), "goal")
	require.NoError(t, err)
	assert.Equal(t, task.Q1, got.PriorityQuadrant)
}

func TestGetAnalytics(t *testing.T) {
	c := newClient(t, newFakeService(), "token")

	a, err := c.GetAnalytics(context.Background(), 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, 3, a.TotalTasks)
	assert.Equal(t, "March", a.MonthName)
	assert.InDelta(t, 33.33, a.CompletionRate, 0.001)
	assert.Equal(t, 2, a.PriorityBreakdown[task.Q1])
	assert.Equal(t, 2, a.StatusBreakdown[task.StatusPending])
	assert.Equal(t, 2, a.DailyCounts["2024-03-10"])
}

func TestClientBacksStore(t *testing.T) {
	f := newFakeService(goal())
	s := store.New(newClient(t, f, "token"))
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.SetStatus(ctx, "goal", task.StatusCancelled))
	assert.Empty(t, s.Tasks())
	assert.Equal(t, []string{"GET /api/tasks/", "DELETE /api/tasks/goal/"}, f.requests)
}

// backendGoal is a task as the service serializes it: naive timestamps with
// microseconds and nulls for unset fields.
const backendGoal = `{"id":"goal","title":"run","description":null,"urgency":2,"importance":3,` +
	`"priority_quadrant":"Q2","priority_score":735,"status":"pending",` +
	`"created_at":"2024-03-01T10:00:00.123456","updated_at":null,"task_type":"monthly",` +
	`"is_recurring":true,"recurrence_pattern":"daily","recurrence_days":[],` +
	`"recurrence_end_date":null,"due_date":"2024-03-01T00:00:00","due_time":null,` +
	`"parent_task_id":null,"completed_dates":%s}`

func backendTask(completed string) string {
	return fmt.Sprintf(backendGoal, completed)
}

func newRawClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Options{BaseURL: server.URL + "/api", Token: "token", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestListTasks_BackendPayload(t *testing.T) {
	f := newFakeService()
	f.listBody = `[` + backendTask(`["2024-03-09"]`) + `,` +
		`{"id":"broken","title":"x","created_at":12},` +
		`{"id":"call","title":"call","created_at":"2024-03-02T08:30:00.5+00:00","updated_at":"2024-03-02T09:00:00Z"}]`

	tasks, err := newClient(t, f, "token").ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2, "one bad element must not drop the others")

	assert.Equal(t, "goal", tasks[0].ID)
	assert.Equal(t, time.Date(2024, time.March, 1, 10, 0, 0, 123456000, time.UTC), tasks[0].CreatedAt.Time)
	assert.True(t, tasks[0].UpdatedAt.IsZero())
	assert.Equal(t, []string{"2024-03-09"}, tasks[0].CompletedDates)
	assert.Equal(t, task.PatternDaily, tasks[0].RecurrencePattern)

	assert.Equal(t, "call", tasks[1].ID)
	assert.True(t, tasks[1].CreatedAt.Equal(time.Date(2024, time.March, 2, 8, 30, 0, 500000000, time.UTC)))
}

func TestCreateAndUpdate_BackendPayload(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(backendTask(`[]`)))
		case http.MethodPatch:
			_, _ = w.Write([]byte(backendTask(`["2024-03-10"]`)))
		}
	})
	ctx := context.Background()

	created, err := c.CreateTask(ctx, task.Input{Title: "run"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "goal", created.ID)

	updated, err := c.UpdateTask(ctx, "goal", task.Update{CompletionDate: "2024-03-10"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, []string{"2024-03-10"}, updated.CompletedDates)
	assert.Equal(t, 123456000, updated.CreatedAt.Nanosecond())
}

func TestStoreKeepsCommittedCompletion(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"results":[` + backendTask(`[]`) + `]}`))
		case http.MethodPatch:
			_, _ = w.Write([]byte(backendTask(`["2024-03-10"]`)))
		}
	})
	s := store.New(c)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	require.Len(t, s.Tasks(), 1)

	_, err := s.CompleteOccurrence(ctx, "goal", occurrence.NewDate(2024, time.March, 10), true)
	require.NoError(t, err)

	got, err := s.Get("goal")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-10"}, got.CompletedDates)
}
