// Package taskclient talks to the Task Service REST API.
package taskclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cyp0633/tasklens/internal/httpclient"
	"github.com/cyp0633/tasklens/store"
	"github.com/cyp0633/tasklens/task"
)

// Client is a Task Service client. It implements store.Service.
type Client struct {
	httpClient httpclient.HttpClientWrapper
	logger     *slog.Logger
}

var _ store.Service = (*Client)(nil)

// Options configures New.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Transport is the underlying round tripper. Nil means
	// http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// New creates a client authenticating with a bearer token.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := &http.Client{
		Timeout:   opts.Timeout,
		Transport: httpclient.NewBearerTransport(opts.Token, opts.Transport, logger),
	}
	wrapper, err := httpclient.NewHttpClientWrapper(httpClient, *base, logger)
	if err != nil {
		return nil, err
	}
	return NewWithWrapper(wrapper, logger), nil
}

// NewWithWrapper creates a client over an existing wrapper.
func NewWithWrapper(wrapper httpclient.HttpClientWrapper, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{httpClient: wrapper, logger: logger}
}

func taskPath(id string) string {
	return "tasks/" + url.PathEscape(id) + "/"
}

// ListTasks fetches every task of the user. The service answers with either
// a bare array or a paginated {"results": [...]} object; any other shape is
// treated as an empty collection. Elements that fail to decode are skipped.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var raw json.RawMessage
	if err := c.httpClient.Do(ctx, http.MethodGet, "tasks/", nil, nil, &raw); err != nil {
		return nil, wrap("list tasks", err)
	}
	return c.decodeList(raw), nil
}

func (c *Client) decodeList(raw json.RawMessage) []task.Task {
	var elems []json.RawMessage
	trimmed := strings.TrimSpace(string(raw))

	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(raw, &elems); err != nil {
			elems = nil
		}
	case strings.HasPrefix(trimmed, "{"):
		var page struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(raw, &page); err == nil {
			elems = page.Results
		}
	}
	if elems == nil {
		c.logger.Warn("unexpected task list shape, treating as empty", "body_length", len(raw))
		return []task.Task{}
	}

	tasks := make([]task.Task, 0, len(elems))
	for i, elem := range elems {
		var t task.Task
		if err := json.Unmarshal(elem, &t); err != nil {
			c.logger.Warn("skipping undecodable task", "index", i, "error", err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// CreateTask creates a task. The service computes the quadrant and score.
func (c *Client) CreateTask(ctx context.Context, in task.Input) (*task.Task, error) {
	if in.RecurrenceDays == nil {
		in.RecurrenceDays = []int{}
	}
	var out task.Task
	if err := c.httpClient.Do(ctx, http.MethodPost, "tasks/", nil, in, &out); err != nil {
		return nil, wrap("create task", err)
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

// UpdateTask sends a partial update. A nil task with a nil error means the
// service accepted the update without echoing the task.
func (c *Client) UpdateTask(ctx context.Context, id string, u task.Update) (*task.Task, error) {
	var out task.Task
	if err := c.httpClient.Do(ctx, http.MethodPatch, taskPath(id), nil, u, &out); err != nil {
		return nil, wrap("update task "+id, err)
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.httpClient.Do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil); err != nil {
		return wrap("delete task "+id, err)
	}
	return nil
}

// Reanalyze asks the service to re-derive urgency and importance from the
// task description and returns the re-prioritized task.
func (c *Client) Reanalyze(ctx context.Context, id string) (*task.Task, error) {
	var out task.Task
	if err := c.httpClient.Do(ctx, http.MethodPost, taskPath(id)+"reanalyze/", nil, nil, &out); err != nil {
		return nil, wrap("reanalyze task "+id, err)
	}
	return &out, nil
}

// Analytics is the service's monthly dashboard summary.
type Analytics struct {
	Month             int                   `json:"month"`
	Year              int                   `json:"year"`
	MonthName         string                `json:"month_name"`
	TotalDaysInMonth  int                   `json:"total_days_in_month"`
	TotalTasks        int                   `json:"total_tasks"`
	CompletedTasks    int                   `json:"completed_tasks"`
	PendingTasks      int                   `json:"pending_tasks"`
	InProgressTasks   int                   `json:"in_progress_tasks"`
	CompletionRate    float64               `json:"completion_rate"`
	PriorityBreakdown map[task.Quadrant]int `json:"priority_breakdown"`
	StatusBreakdown   map[task.Status]int   `json:"status_breakdown"`
	DailyCounts       map[string]int        `json:"daily_counts"`
	AvgUrgency        float64               `json:"avg_urgency"`
	AvgImportance     float64               `json:"avg_importance"`
}

// GetAnalytics fetches the summary for a month.
func (c *Client) GetAnalytics(ctx context.Context, year int, month time.Month) (*Analytics, error) {
	query := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(int(month))},
	}
	var out Analytics
	if err := c.httpClient.Do(ctx, http.MethodGet, "tasks/analytics/", query, nil, &out); err != nil {
		return nil, wrap("get analytics", err)
	}
	return &out, nil
}

// wrap converts transport and status errors into *task.Error.
func wrap(op string, err error) error {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return &task.Error{
			Kind:       task.KindServiceFailure,
			StatusCode: se.Code,
			Message:    op,
			Err:        err,
		}
	}
	return &task.Error{Kind: task.KindServiceFailure, Message: op, Err: err}
}
