// Package task holds the task model shared by the occurrence engine, the
// store and the Task Service client.
package task

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the global status of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the wire values plus "in-progress" as a CLI convenience.
func ParseStatus(input string) (Status, error) {
	s := Status(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(input)), "-", "_"))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid status: %q", input)
	}
	return s, nil
}

// Type classifies which view owns a task.
type Type string

const (
	TypeDaily   Type = "daily"
	TypeMonthly Type = "monthly"
	TypeNone    Type = "none"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeDaily, TypeMonthly, TypeNone:
		return true
	default:
		return false
	}
}

func ParseType(input string) (Type, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return TypeNone, nil
	}
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid task type: %q", input)
	}
	return t, nil
}

// Pattern is a recurrence pattern. Only PatternDaily produces occurrences.
type Pattern string

const (
	PatternNone    Pattern = ""
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
)

func (p Pattern) IsValid() bool {
	switch p {
	case PatternNone, PatternDaily, PatternWeekly, PatternMonthly:
		return true
	default:
		return false
	}
}

func ParsePattern(input string) (Pattern, error) {
	p := Pattern(strings.TrimSpace(strings.ToLower(input)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid recurrence pattern: %q", input)
	}
	return p, nil
}

// Task is the only entity of the task manager.
type Task struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Urgency          int      `json:"urgency"`
	Importance       int      `json:"importance"`
	PriorityQuadrant Quadrant `json:"priority_quadrant"`
	PriorityScore    int      `json:"priority_score"`
	Status           Status   `json:"status"`
	TaskType         Type     `json:"task_type"`

	// DueDate is the raw ISO-8601 anchor as sent by the service. It is kept
	// unparsed so malformed values reach the engine, which treats them as
	// non-occurring.
	DueDate           string  `json:"due_date"`
	DueTime           string  `json:"due_time,omitempty"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurrencePattern Pattern `json:"recurrence_pattern"`
	// RecurrenceEndDate is the inclusive last day. Empty means unbounded.
	RecurrenceEndDate string   `json:"recurrence_end_date"`
	RecurrenceDays    []int    `json:"recurrence_days,omitempty"`
	CompletedDates    []string `json:"completed_dates,omitempty"`
	ParentTaskID      string   `json:"parent_task_id,omitempty"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Kind returns the task type, treating an empty value as TypeNone.
func (t *Task) Kind() Type {
	if t.TaskType == "" {
		return TypeNone
	}
	return t.TaskType
}

// HasCompletedDate reports whether key is recorded in CompletedDates.
func (t *Task) HasCompletedDate(key string) bool {
	return slices.Contains(t.CompletedDates, key)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.RecurrenceDays = slices.Clone(t.RecurrenceDays)
	c.CompletedDates = slices.Clone(t.CompletedDates)
	return c
}

// Input is the payload for creating a task.
type Input struct {
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Urgency           int     `json:"urgency"`
	Importance        int     `json:"importance"`
	TaskType          Type    `json:"task_type"`
	DueDate           string  `json:"due_date,omitempty"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurrencePattern Pattern `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate string  `json:"recurrence_end_date,omitempty"`
	RecurrenceDays    []int   `json:"recurrence_days"`
}

// Validate checks the fields the service would reject.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &Error{Kind: KindInvalidInput, Message: "title is required"}
	}
	if in.Urgency != 0 && (in.Urgency < 1 || in.Urgency > 4) {
		return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("urgency %d out of range [1,4]", in.Urgency)}
	}
	if in.Importance != 0 && (in.Importance < 1 || in.Importance > 4) {
		return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("importance %d out of range [1,4]", in.Importance)}
	}
	if in.TaskType != "" && !in.TaskType.IsValid() {
		return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("invalid task type %q", in.TaskType)}
	}
	if !in.RecurrencePattern.IsValid() {
		return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("invalid recurrence pattern %q", in.RecurrencePattern)}
	}
	if in.IsRecurring && in.RecurrencePattern == PatternNone {
		return &Error{Kind: KindInvalidInput, Message: "recurring task needs a recurrence pattern"}
	}
	return nil
}
