package partition

import (
	"math"
	"time"

	"github.com/cyp0633/tasklens/occurrence"
	"github.com/cyp0633/tasklens/task"
)

// Summary counts tasks per status and quadrant.
type Summary struct {
	Total          int
	ByStatus       map[task.Status]int
	ByQuadrant     map[task.Quadrant]int
	Recurring      int
	CompletionRate float64 // percent, rounded to two decimals
}

// Summarize counts the statuses of tasks as given. Pass the output of
// WithEffectiveStatus to count per-day completion.
func Summarize(tasks []task.Task) Summary {
	s := Summary{
		Total:      len(tasks),
		ByStatus:   make(map[task.Status]int),
		ByQuadrant: make(map[task.Quadrant]int),
	}
	for _, t := range tasks {
		s.ByStatus[t.Status]++
		if t.PriorityQuadrant != "" {
			s.ByQuadrant[t.PriorityQuadrant]++
		}
		if t.IsRecurring {
			s.Recurring++
		}
	}
	if s.Total > 0 {
		rate := float64(s.ByStatus[task.StatusCompleted]) / float64(s.Total) * 100
		s.CompletionRate = math.Round(rate*100) / 100
	}
	return s
}

// DayCell is one day of a calendar month.
type DayCell struct {
	Date  occurrence.Date
	Tasks []task.Task // with the effective status of that day
}

// CalendarGrid returns one cell per day of month with the tasks occurring on
// that day, considering every task regardless of type.
func (p *Partitioner) CalendarGrid(tasks []task.Task, year int, month time.Month) []DayCell {
	days := occurrence.DaysIn(year, month)
	cells := make([]DayCell, days)
	for i := range cells {
		cells[i] = DayCell{Date: occurrence.Date{Year: year, Month: month, Day: i + 1}, Tasks: []task.Task{}}
	}
	first, last := cells[0].Date, cells[days-1].Date

	for i := range tasks {
		t := &tasks[i]
		for _, d := range p.occurrencesIn(t, first, last) {
			shown := t.Clone()
			shown.Status = p.engine.EffectiveStatus(t, d)
			cells[d.Day-1].Tasks = append(cells[d.Day-1].Tasks, shown)
		}
	}
	return cells
}

// occurrencesIn expands t over [first, last] of one month, falling back to
// a day-by-day OccursOn scan when the rule cannot be built.
func (p *Partitioner) occurrencesIn(t *task.Task, first, last occurrence.Date) []occurrence.Date {
	days, err := p.engine.Occurrences(t, first, last)
	if err == nil {
		return days
	}
	days = days[:0]
	for d := first; !d.After(last); d = d.AddDays(1) {
		if p.engine.OccursOn(t, d) {
			days = append(days, d)
		}
	}
	return days
}
