package occurrence

import (
	"fmt"
	"time"

	"github.com/cyp0633/tasklens/task"
	"github.com/teambition/rrule-go"
)

const (
	opOccursOn        = "occurs-on"
	opEffectiveStatus = "effective-status"
)

// Engine answers occurrence and per-day status questions about tasks. It
// never mutates a task and is safe for concurrent use.
type Engine struct {
	cache  *Cache
	config EngineConfig
}

// Location returns the zone day boundaries are computed in.
func (e *Engine) Location() *time.Location {
	return e.config.Location
}

// Close releases the cache, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats reports cache occupancy. It is zero when caching is disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// OccursOn reports whether t is active on day d.
//
// A non-recurring task occurs on the calendar day of its due date. A
// recurring daily task occurs on every day from its due date through its
// end date (inclusive, unbounded when absent). Other patterns, and tasks
// whose dates cannot be parsed, never occur.
func (e *Engine) OccursOn(t *task.Task, d Date) bool {
	if t == nil {
		return false
	}
	if e.cache != nil {
		if v, ok := e.cache.Get(opOccursOn, t, d, e.config.Location); ok {
			return v.(bool)
		}
	}

	result := e.occursOn(t, d)

	if e.cache != nil {
		e.cache.Set(opOccursOn, t, d, e.config.Location, result)
	}
	return result
}

func (e *Engine) occursOn(t *task.Task, d Date) bool {
	loc := e.config.Location
	query := d.Start(loc)

	if !t.IsRecurring {
		due, ok := DayOf(t.DueDate, loc).Get()
		return ok && due == d
	}

	start, end, ok := e.recurrenceBounds(t)
	if !ok {
		return false
	}
	if query.Before(start) {
		return false
	}
	if end, bounded := end.Get(); bounded && query.After(end) {
		return false
	}
	return true
}

// OverlapsRange reports whether t has at least one occurrence between from
// and to, both inclusive.
func (e *Engine) OverlapsRange(t *task.Task, from, to time.Time) bool {
	return e.overlaps(t, from, to, e.recurrenceBounds)
}

// SpansRange reports whether the active span of t, from its due date through
// its end date, intersects [from, to]. Unlike OverlapsRange it ignores the
// recurrence pattern, so weekly and monthly tasks are matched by their dates
// alone.
func (e *Engine) SpansRange(t *task.Task, from, to time.Time) bool {
	return e.overlaps(t, from, to, e.spanBounds)
}

type boundsFunc func(t *task.Task) (time.Time, optionalTime, bool)

func (e *Engine) overlaps(t *task.Task, from, to time.Time, bounds boundsFunc) bool {
	if t == nil || to.Before(from) {
		return false
	}
	loc := e.config.Location

	if !t.IsRecurring {
		due, ok := DayStart(t.DueDate, loc).Get()
		if !ok {
			return false
		}
		return !due.After(to) && !due.Before(StartOfDay(from, loc))
	}

	start, end, ok := bounds(t)
	if !ok {
		return false
	}
	if start.After(to) {
		return false
	}
	if end, bounded := end.Get(); bounded && end.Before(from) {
		return false
	}
	return true
}

// Occurrences enumerates the days between from and to (inclusive) on which
// t occurs, capped at MaxExpansionDays.
func (e *Engine) Occurrences(t *task.Task, from, to Date) ([]Date, error) {
	if t == nil || to.Before(from) {
		return nil, nil
	}
	loc := e.config.Location

	if !t.IsRecurring {
		due, ok := DayOf(t.DueDate, loc).Get()
		if !ok || due.Before(from) || due.After(to) {
			return nil, nil
		}
		return []Date{due}, nil
	}

	opt := e.DailyRule(t)
	if opt == nil {
		return nil, nil
	}
	if limit := from.AddDays(e.config.MaxExpansionDays - 1); to.After(limit) {
		to = limit
	}

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily rule for task %q: %w", t.ID, err)
	}

	// Day arithmetic runs on UTC midnights so DST shifts in loc cannot move
	// an occurrence onto a neighbouring day.
	instants := rule.Between(utcMidnight(from), utcMidnight(to), true)
	days := make([]Date, 0, len(instants))
	for _, inst := range instants {
		days = append(days, DateOf(inst.UTC()))
	}
	return days, nil
}

// DailyRule returns the recurrence rule of a daily recurring task, or nil
// for anything else.
func (e *Engine) DailyRule(t *task.Task) *rrule.ROption {
	if t == nil || !t.IsRecurring || t.RecurrencePattern != task.PatternDaily {
		return nil
	}
	loc := e.config.Location
	first, ok := DayOf(t.DueDate, loc).Get()
	if !ok {
		return nil
	}
	opt := &rrule.ROption{Freq: rrule.DAILY, Dtstart: utcMidnight(first)}
	if t.RecurrenceEndDate != "" {
		last, ok := DayOf(t.RecurrenceEndDate, loc).Get()
		if !ok {
			return nil
		}
		opt.Until = utcMidnight(last)
	}
	return opt
}

// recurrenceBounds returns the normalized [start, end] of a daily recurring
// task. ok is false for unsupported patterns and malformed dates.
func (e *Engine) recurrenceBounds(t *task.Task) (time.Time, optionalTime, bool) {
	if t.RecurrencePattern != task.PatternDaily {
		return time.Time{}, unbounded(), false
	}
	return e.spanBounds(t)
}

// spanBounds returns the normalized [start, end] of a recurring task
// whatever its pattern. ok is false when a date is malformed.
func (e *Engine) spanBounds(t *task.Task) (start time.Time, end optionalTime, ok bool) {
	loc := e.config.Location

	start, ok = DayStart(t.DueDate, loc).Get()
	if !ok {
		return time.Time{}, end, false
	}
	if t.RecurrenceEndDate == "" {
		return start, unbounded(), true
	}
	endOpt := DayEnd(t.RecurrenceEndDate, loc)
	if endOpt.IsAbsent() {
		return time.Time{}, end, false
	}
	return start, endOpt, true
}

func utcMidnight(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
