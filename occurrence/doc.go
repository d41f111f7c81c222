/*
Package occurrence decides on which calendar days a task is active and what
its status is on each of those days.

# Days and zones

Every comparison is made between normalized day boundaries: a task's due
date is moved to 00:00:00 of its calendar day and an end date to the last
instant of its day, both in the engine's location. A due date of
2024-03-15T12:00:00 therefore occurs on the whole of March 15th, and a
recurrence ending 2024-03-31 still occurs on the 31st.

	eng := occurrence.NewEngine()
	d := occurrence.NewDate(2024, time.March, 31)
	eng.OccursOn(&t, d)
	eng.EffectiveStatus(&t, d)

# Per-day completion

Recurring tasks track completion per occurrence through completed_dates,
a set of zero-padded YYYY-MM-DD keys. Use CompletionUpdate to build the
matching update for the Task Service.

# Caching

NewEngineWithConfig(DefaultEngineConfig) memoizes answers by task
snapshot and day. Close the engine to stop the cache's cleanup goroutine.
*/
package occurrence

import "github.com/cyp0633/tasklens/task"

var defaultEngine = NewEngine()

// OccursOn reports whether t occurs on d in the local zone.
func OccursOn(t *task.Task, d Date) bool {
	return defaultEngine.OccursOn(t, d)
}

// EffectiveStatus returns the status of t on d in the local zone.
func EffectiveStatus(t *task.Task, d Date) task.Status {
	return defaultEngine.EffectiveStatus(t, d)
}
