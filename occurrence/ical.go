package occurrence

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cyp0633/tasklens/task"
	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

const (
	productID = "-//tasklens//Task Occurrences//EN"

	propCompletedDates = "X-TASKLENS-COMPLETED-DATES"
	propTaskType       = "X-TASKLENS-TASK-TYPE"
	propQuadrant       = "X-TASKLENS-QUADRANT"
	propPattern        = "X-TASKLENS-PATTERN"
)

var statusToICal = map[task.Status]string{
	task.StatusPending:    "NEEDS-ACTION",
	task.StatusInProgress: "IN-PROCESS",
	task.StatusCompleted:  "COMPLETED",
	task.StatusCancelled:  "CANCELLED",
}

var priorityToICal = map[task.Quadrant]int{
	task.Q1: 1,
	task.Q2: 3,
	task.Q3: 5,
	task.Q4: 9,
}

// ToTodo converts t into a VTODO. Daily recurring tasks carry an RRULE;
// per-day completions are kept in an X- property.
func (e *Engine) ToTodo(t *task.Task) (*ical.Component, error) {
	if t == nil || t.ID == "" {
		return nil, fmt.Errorf("task without id cannot be exported")
	}
	loc := e.config.Location

	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetText(ical.PropUID, t.ID)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, stampOf(t))
	todo.Props.SetText(ical.PropSummary, t.Title)
	if t.Description != "" {
		todo.Props.SetText(ical.PropDescription, t.Description)
	}
	if s, ok := statusToICal[t.Status]; ok {
		todo.Props.SetText(ical.PropStatus, s)
	}
	if p, ok := priorityToICal[t.PriorityQuadrant]; ok {
		prop := ical.NewProp(ical.PropPriority)
		prop.Value = fmt.Sprint(p)
		todo.Props.Set(prop)
		todo.Props.SetText(propQuadrant, string(t.PriorityQuadrant))
	}
	todo.Props.SetText(propTaskType, string(t.Kind()))

	if due, ok := DayOf(t.DueDate, loc).Get(); ok {
		todo.Props.SetDate(ical.PropDateTimeStart, utcMidnight(due))
		if !t.IsRecurring {
			todo.Props.SetDate(ical.PropDue, utcMidnight(due))
		}
	}

	if t.IsRecurring {
		todo.Props.SetText(propPattern, string(t.RecurrencePattern))
		if rule := e.DailyRule(t); rule != nil {
			setDateRule(todo.Props, rule)
		}
		if len(t.CompletedDates) > 0 {
			todo.Props.SetText(propCompletedDates, strings.Join(t.CompletedDates, ","))
		}
	}

	return todo, nil
}

// ExportCalendar writes tasks as a VCALENDAR of VTODOs to w.
func (e *Engine) ExportCalendar(w io.Writer, tasks []task.Task) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for i := range tasks {
		todo, err := e.ToTodo(&tasks[i])
		if err != nil {
			return fmt.Errorf("failed to convert task %d: %w", i, err)
		}
		cal.Children = append(cal.Children, todo)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// TaskFromTodo reads back the fields ToTodo writes.
func (e *Engine) TaskFromTodo(comp *ical.Component) (task.Task, error) {
	if comp == nil || comp.Name != ical.CompToDo {
		return task.Task{}, fmt.Errorf("not a VTODO component")
	}
	var t task.Task

	uid, err := comp.Props.Text(ical.PropUID)
	if err != nil || uid == "" {
		return task.Task{}, fmt.Errorf("VTODO without UID")
	}
	t.ID = uid
	t.Title, _ = comp.Props.Text(ical.PropSummary)
	t.Description, _ = comp.Props.Text(ical.PropDescription)

	if s, _ := comp.Props.Text(ical.PropStatus); s != "" {
		for k, v := range statusToICal {
			if v == s {
				t.Status = k
			}
		}
	}
	if q, _ := comp.Props.Text(propQuadrant); q != "" {
		t.PriorityQuadrant = task.Quadrant(q)
	}
	if typ, _ := comp.Props.Text(propTaskType); typ != "" {
		t.TaskType = task.Type(typ)
	}

	if start, err := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC); err == nil {
		t.DueDate = DateOf(start).Key()
	}

	rule, err := comp.Props.RecurrenceRule()
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to parse RRULE of %q: %w", uid, err)
	}
	if pattern, _ := comp.Props.Text(propPattern); pattern != "" || rule != nil {
		t.IsRecurring = true
		t.RecurrencePattern = task.Pattern(pattern)
		if rule != nil {
			t.RecurrencePattern = task.PatternDaily
			if !rule.Until.IsZero() {
				t.RecurrenceEndDate = DateOf(rule.Until.UTC()).Key()
			}
		}
	}
	if dates, _ := comp.Props.Text(propCompletedDates); dates != "" {
		t.CompletedDates = strings.Split(dates, ",")
	}

	return t, nil
}

// ImportCalendar decodes every VTODO in r.
func (e *Engine) ImportCalendar(r io.Reader) ([]task.Task, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	var tasks []task.Task
	for _, child := range cal.Children {
		if child.Name != ical.CompToDo {
			continue
		}
		t, err := e.TaskFromTodo(child)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// setDateRule writes rule as an RRULE whose UNTIL is a DATE, matching the
// DATE-valued DTSTART (RFC 5545 section 3.3.10).
func setDateRule(props ical.Props, rule *rrule.ROption) {
	opt := *rule
	opt.Until = time.Time{}
	value := opt.RRuleString()
	if !rule.Until.IsZero() {
		value += ";UNTIL=" + rule.Until.UTC().Format(rrule.DateFormat)
	}

	prop := ical.NewProp(ical.PropRecurrenceRule)
	prop.SetValueType(ical.ValueRecurrence)
	prop.Value = value
	props.Set(prop)
}

func stampOf(t *task.Task) time.Time {
	switch {
	case !t.UpdatedAt.IsZero():
		return t.UpdatedAt.UTC()
	case !t.CreatedAt.IsZero():
		return t.CreatedAt.UTC()
	default:
		return time.Now().UTC()
	}
}
