package task

import "slices"

// Update is a partial task update. Nil fields are left unchanged.
//
// CompletionDate targets a single occurrence of a recurring task: the
// service adds or removes that key from completed_dates depending on Status
// and leaves the global status alone.
type Update struct {
	Title             *string  `json:"title,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Urgency           *int     `json:"urgency,omitempty"`
	Importance        *int     `json:"importance,omitempty"`
	Status            *Status  `json:"status,omitempty"`
	TaskType          *Type    `json:"task_type,omitempty"`
	DueDate           *string  `json:"due_date,omitempty"`
	IsRecurring       *bool    `json:"is_recurring,omitempty"`
	RecurrencePattern *Pattern `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *string  `json:"recurrence_end_date,omitempty"`
	CompletionDate    string   `json:"completion_date,omitempty"`
}

// StatusUpdate returns an update changing only the global status.
func StatusUpdate(s Status) Update {
	return Update{Status: &s}
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u == Update{}
}

// Apply returns a copy of t with u applied, mirroring what the service does
// so optimistic local state matches the eventual response.
func (u Update) Apply(t Task) Task {
	out := t.Clone()

	if u.CompletionDate != "" && out.IsRecurring {
		done := u.Status != nil && *u.Status == StatusCompleted
		idx := slices.Index(out.CompletedDates, u.CompletionDate)
		switch {
		case done && idx < 0:
			out.CompletedDates = append(out.CompletedDates, u.CompletionDate)
		case !done && idx >= 0:
			out.CompletedDates = slices.Delete(out.CompletedDates, idx, idx+1)
		}
	} else if u.Status != nil {
		out.Status = *u.Status
	}

	if u.Title != nil {
		out.Title = *u.Title
	}
	if u.Description != nil {
		out.Description = *u.Description
	}
	if u.TaskType != nil {
		out.TaskType = *u.TaskType
	}
	if u.DueDate != nil {
		out.DueDate = *u.DueDate
	}
	if u.IsRecurring != nil {
		out.IsRecurring = *u.IsRecurring
	}
	if u.RecurrencePattern != nil {
		out.RecurrencePattern = *u.RecurrencePattern
	}
	if u.RecurrenceEndDate != nil {
		out.RecurrenceEndDate = *u.RecurrenceEndDate
	}

	if u.Urgency != nil || u.Importance != nil {
		if u.Urgency != nil {
			out.Urgency = *u.Urgency
		}
		if u.Importance != nil {
			out.Importance = *u.Importance
		}
		out.Reprioritize()
	}

	return out
}
