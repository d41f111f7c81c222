package occurrence

import (
	"github.com/cyp0633/tasklens/task"
)

// EffectiveStatus returns the status of the occurrence of t on d.
//
// Non-recurring tasks report their global status. Recurring tasks report
// completed when d's key is in CompletedDates and pending otherwise;
// in_progress and cancelled cannot be recorded per occurrence.
func (e *Engine) EffectiveStatus(t *task.Task, d Date) task.Status {
	if t == nil {
		return task.StatusPending
	}
	if e.cache != nil {
		if v, ok := e.cache.Get(opEffectiveStatus, t, d, e.config.Location); ok {
			return v.(task.Status)
		}
	}

	result := effectiveStatus(t, d)

	if e.cache != nil {
		e.cache.Set(opEffectiveStatus, t, d, e.config.Location, result)
	}
	return result
}

func effectiveStatus(t *task.Task, d Date) task.Status {
	if !t.IsRecurring {
		return t.Status
	}
	if t.HasCompletedDate(d.Key()) {
		return task.StatusCompleted
	}
	return task.StatusPending
}

// CompletionUpdate builds the update marking the occurrence of t on d done
// or not done. Recurring tasks carry the date key so sibling occurrences and
// the global status are unaffected.
func CompletionUpdate(t *task.Task, d Date, done bool) task.Update {
	s := task.StatusPending
	if done {
		s = task.StatusCompleted
	}
	u := task.StatusUpdate(s)
	if t != nil && t.IsRecurring {
		u.CompletionDate = d.Key()
	}
	return u
}

// OccurrenceStatusUpdate builds the update a status selector emits for the
// occurrence on d. deleteInstead is true for cancelled, which is never sent
// as a status.
func OccurrenceStatusUpdate(t *task.Task, d Date, s task.Status) (u task.Update, deleteInstead bool) {
	if s == task.StatusCancelled {
		return task.Update{}, true
	}
	u = task.StatusUpdate(s)
	if t != nil && t.IsRecurring {
		u.CompletionDate = d.Key()
	}
	return u, false
}
