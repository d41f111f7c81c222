// Package partition groups a task collection into the subsets the daily,
// month, day-detail, calendar and list views display.
package partition

import (
	"slices"
	"time"

	"github.com/cyp0633/tasklens/occurrence"
	"github.com/cyp0633/tasklens/task"
)

// statusRank orders tasks within a day. Statuses missing from the table
// sort after every known one.
var statusRank = map[task.Status]int{
	task.StatusInProgress: 0,
	task.StatusPending:    1,
	task.StatusCompleted:  2,
	task.StatusCancelled:  3,
}

const fallbackRank = 4

// Rank returns the sort rank of s.
func Rank(s task.Status) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return fallbackRank
}

// Partitioner filters task collections using an occurrence engine.
type Partitioner struct {
	engine *occurrence.Engine
}

// New creates a partitioner. A nil engine uses occurrence.NewEngine().
func New(engine *occurrence.Engine) *Partitioner {
	if engine == nil {
		engine = occurrence.NewEngine()
	}
	return &Partitioner{engine: engine}
}

// Engine returns the underlying occurrence engine.
func (p *Partitioner) Engine() *occurrence.Engine { return p.engine }

// ForDaily returns the tasks shown on today's list: daily-type tasks that
// occur today, plus monthly recurring tasks active today.
func (p *Partitioner) ForDaily(tasks []task.Task, today occurrence.Date) []task.Task {
	out := make([]task.Task, 0)
	for i := range tasks {
		t := &tasks[i]
		switch {
		case t.Kind() == task.TypeDaily && p.engine.OccursOn(t, today):
		case t.Kind() == task.TypeMonthly && t.IsRecurring && p.engine.OccursOn(t, today):
		default:
			continue
		}
		out = append(out, *t)
	}
	sortByStatus(out)
	return out
}

// ForMonth returns the month tracker's tasks: monthly recurring tasks whose
// active span intersects the month, whatever their pattern, and one-off
// tasks that are not daily-type and are due in the month. Input order is
// preserved.
func (p *Partitioner) ForMonth(tasks []task.Task, year int, month time.Month) []task.Task {
	loc := p.engine.Location()
	monthStart, monthEnd := occurrence.MonthRange(year, month, loc)

	out := make([]task.Task, 0)
	for i := range tasks {
		t := &tasks[i]
		if t.IsRecurring {
			if t.Kind() == task.TypeMonthly && p.engine.SpansRange(t, monthStart, monthEnd) {
				out = append(out, *t)
			}
			continue
		}
		if t.Kind() == task.TypeDaily {
			continue
		}
		due, ok := occurrence.DayOf(t.DueDate, loc).Get()
		if ok && due.Year == year && due.Month == month {
			out = append(out, *t)
		}
	}
	return out
}

// ForDay narrows the month view of d's month to the tasks occurring on d.
func (p *Partitioner) ForDay(tasks []task.Task, d occurrence.Date) []task.Task {
	month := p.ForMonth(tasks, d.Year, d.Month)
	out := make([]task.Task, 0, len(month))
	for i := range month {
		if p.engine.OccursOn(&month[i], d) {
			out = append(out, month[i])
		}
	}
	sortByStatus(out)
	return out
}

// WithEffectiveStatus returns copies of tasks whose Status is replaced by the
// status of their occurrence on d, for display.
func (p *Partitioner) WithEffectiveStatus(tasks []task.Task, d occurrence.Date) []task.Task {
	out := make([]task.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
		out[i].Status = p.engine.EffectiveStatus(&tasks[i], d)
	}
	return out
}

// sortByStatus stable-sorts tasks by the rank of their stored status. The
// per-day status of a recurring task does not move it in the list.
func sortByStatus(tasks []task.Task) {
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		return Rank(a.Status) - Rank(b.Status)
	})
}

var defaultPartitioner = New(nil)

// ForDaily partitions with the local-zone engine.
func ForDaily(tasks []task.Task, today occurrence.Date) []task.Task {
	return defaultPartitioner.ForDaily(tasks, today)
}

// ForMonth partitions with the local-zone engine.
func ForMonth(tasks []task.Task, year int, month time.Month) []task.Task {
	return defaultPartitioner.ForMonth(tasks, year, month)
}

// ForDay partitions with the local-zone engine.
func ForDay(tasks []task.Task, d occurrence.Date) []task.Task {
	return defaultPartitioner.ForDay(tasks, d)
}
