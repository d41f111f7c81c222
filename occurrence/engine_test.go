package occurrence

import (
	"testing"
	"time"

	"github.com/cyp0633/tasklens/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcEngine() *Engine {
	cfg := DisabledCacheConfig
	cfg.Location = time.UTC
	return NewEngineWithConfig(cfg)
}

func marchGoal() task.Task {
	return task.Task{
		ID:                "goal",
		Title:             "Read 20 pages",
		Status:            task.StatusPending,
		TaskType:          task.TypeMonthly,
		DueDate:           "2024-03-01T12:00:00Z",
		IsRecurring:       true,
		RecurrencePattern: task.PatternDaily,
		RecurrenceEndDate: "2024-03-31T00:00:00Z",
	}
}

func TestEngine_OccursOn_MonthlyGoal(t *testing.T) {
	engine := utcEngine()
	goal := marchGoal()

	for day := 1; day <= 31; day++ {
		assert.True(t, engine.OccursOn(&goal, NewDate(2024, time.March, day)), "March %d", day)
	}
	assert.False(t, engine.OccursOn(&goal, NewDate(2024, time.February, 29)))
	assert.False(t, engine.OccursOn(&goal, NewDate(2024, time.April, 1)))
}

func TestEngine_OccursOn_NonRecurring(t *testing.T) {
	engine := utcEngine()
	one := task.Task{ID: "one", DueDate: "2024-03-15T12:00:00Z", Status: task.StatusInProgress}

	var hits []Date
	for d := NewDate(2024, time.January, 1); d.Year == 2024; d = d.AddDays(1) {
		if engine.OccursOn(&one, d) {
			hits = append(hits, d)
		}
	}

	require.Len(t, hits, 1)
	assert.Equal(t, NewDate(2024, time.March, 15), hits[0])
	assert.Equal(t, task.StatusInProgress, engine.EffectiveStatus(&one, hits[0]))
}

func TestEngine_OccursOn_EdgeCases(t *testing.T) {
	engine := utcEngine()
	day := NewDate(2024, time.March, 10)

	tests := []struct {
		name string
		task task.Task
		day  Date
		want bool
	}{
		{
			name: "start equals end occurs that single day",
			task: task.Task{DueDate: "2024-03-10", IsRecurring: true, RecurrencePattern: task.PatternDaily, RecurrenceEndDate: "2024-03-10"},
			day:  day,
			want: true,
		},
		{
			name: "start equals end not the next day",
			task: task.Task{DueDate: "2024-03-10", IsRecurring: true, RecurrencePattern: task.PatternDaily, RecurrenceEndDate: "2024-03-10"},
			day:  day.AddDays(1),
			want: false,
		},
		{
			name: "before start never occurs",
			task: task.Task{DueDate: "2024-03-11T00:00:00Z", IsRecurring: true, RecurrencePattern: task.PatternDaily},
			day:  day,
			want: false,
		},
		{
			name: "unbounded occurs far in the future",
			task: task.Task{DueDate: "2024-03-01", IsRecurring: true, RecurrencePattern: task.PatternDaily},
			day:  NewDate(2030, time.June, 1),
			want: true,
		},
		{
			name: "end date at midnight is still inclusive",
			task: task.Task{DueDate: "2024-03-01", IsRecurring: true, RecurrencePattern: task.PatternDaily, RecurrenceEndDate: "2024-03-10T00:00:00Z"},
			day:  day,
			want: true,
		},
		{
			name: "noon due date matches the whole day",
			task: task.Task{DueDate: "2024-03-10T12:00:00Z", IsRecurring: true, RecurrencePattern: task.PatternDaily},
			day:  day,
			want: true,
		},
		{
			name: "weekly pattern is not implemented",
			task: task.Task{DueDate: "2024-03-10", IsRecurring: true, RecurrencePattern: task.PatternWeekly},
			day:  day,
			want: false,
		},
		{
			name: "recurring without pattern",
			task: task.Task{DueDate: "2024-03-10", IsRecurring: true},
			day:  day,
			want: false,
		},
		{
			name: "missing due date",
			task: task.Task{},
			day:  day,
			want: false,
		},
		{
			name: "malformed due date",
			task: task.Task{DueDate: "tomorrow"},
			day:  day,
			want: false,
		},
		{
			name: "malformed end date",
			task: task.Task{DueDate: "2024-03-01", IsRecurring: true, RecurrencePattern: task.PatternDaily, RecurrenceEndDate: "soon"},
			day:  day,
			want: false,
		},
		{
			name: "pattern set but not recurring uses due date only",
			task: task.Task{DueDate: "2024-03-01", RecurrencePattern: task.PatternDaily},
			day:  day,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.OccursOn(&tt.task, tt.day))
		})
	}
}

func TestEngine_OccursOn_LocalZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	engine := NewEngineWithConfig(EngineConfig{Location: ny})

	// 02:00 UTC on the 15th is the evening of the 14th in New York.
	late := task.Task{DueDate: "2024-03-15T02:00:00Z"}
	assert.True(t, engine.OccursOn(&late, NewDate(2024, time.March, 14)))
	assert.False(t, engine.OccursOn(&late, NewDate(2024, time.March, 15)))

	assert.True(t, utcEngine().OccursOn(&late, NewDate(2024, time.March, 15)))
}

func TestEngine_OccursOn_Nil(t *testing.T) {
	assert.False(t, utcEngine().OccursOn(nil, NewDate(2024, time.March, 1)))
}

func TestEngine_EffectiveStatus_RoundTrip(t *testing.T) {
	engine := utcEngine()
	goal := marchGoal()
	d := NewDate(2024, time.March, 5)
	sibling := NewDate(2024, time.March, 6)

	assert.Equal(t, task.StatusPending, engine.EffectiveStatus(&goal, d))

	marked := CompletionUpdate(&goal, d, true).Apply(goal)
	assert.Equal(t, task.StatusCompleted, engine.EffectiveStatus(&marked, d))
	assert.Equal(t, task.StatusPending, engine.EffectiveStatus(&marked, sibling))
	assert.Equal(t, task.StatusPending, marked.Status, "global status untouched")

	unmarked := CompletionUpdate(&marked, d, false).Apply(marked)
	assert.Equal(t, task.StatusPending, engine.EffectiveStatus(&unmarked, d))
	assert.Empty(t, unmarked.CompletedDates)
}

func TestEngine_EffectiveStatus_IgnoresGlobalStatusForRecurring(t *testing.T) {
	engine := utcEngine()
	goal := marchGoal()
	goal.Status = task.StatusInProgress
	goal.CompletedDates = []string{"2024-03-02"}

	assert.Equal(t, task.StatusPending, engine.EffectiveStatus(&goal, NewDate(2024, time.March, 1)))
	assert.Equal(t, task.StatusCompleted, engine.EffectiveStatus(&goal, NewDate(2024, time.March, 2)))
}

func TestCompletionUpdate(t *testing.T) {
	goal := marchGoal()
	d := NewDate(2024, time.March, 9)

	u := CompletionUpdate(&goal, d, true)
	require.NotNil(t, u.Status)
	assert.Equal(t, task.StatusCompleted, *u.Status)
	assert.Equal(t, "2024-03-09", u.CompletionDate)

	one := task.Task{DueDate: "2024-03-09"}
	u = CompletionUpdate(&one, d, true)
	assert.Empty(t, u.CompletionDate, "non-recurring tasks change their global status")
}

func TestOccurrenceStatusUpdate(t *testing.T) {
	goal := marchGoal()
	d := NewDate(2024, time.March, 9)

	_, del := OccurrenceStatusUpdate(&goal, d, task.StatusCancelled)
	assert.True(t, del)

	u, del := OccurrenceStatusUpdate(&goal, d, task.StatusInProgress)
	assert.False(t, del)
	assert.Equal(t, task.StatusInProgress, *u.Status)
	assert.Equal(t, "2024-03-09", u.CompletionDate)
}

func TestEngine_OverlapsRange(t *testing.T) {
	engine := utcEngine()
	goal := marchGoal()

	aprStart, aprEnd := MonthRange(2024, time.April, time.UTC)
	marStart, marEnd := MonthRange(2024, time.March, time.UTC)
	febStart, febEnd := MonthRange(2024, time.February, time.UTC)

	assert.True(t, engine.OverlapsRange(&goal, marStart, marEnd))
	assert.False(t, engine.OverlapsRange(&goal, aprStart, aprEnd))
	assert.False(t, engine.OverlapsRange(&goal, febStart, febEnd))

	open := goal
	open.RecurrenceEndDate = ""
	assert.True(t, engine.OverlapsRange(&open, aprStart, aprEnd))

	one := task.Task{DueDate: "2024-03-31T18:00:00Z"}
	assert.True(t, engine.OverlapsRange(&one, marStart, marEnd))
	assert.False(t, engine.OverlapsRange(&one, aprStart, aprEnd))
}

func TestEngine_SpansRange(t *testing.T) {
	engine := utcEngine()
	marStart, marEnd := MonthRange(2024, time.March, time.UTC)
	aprStart, aprEnd := MonthRange(2024, time.April, time.UTC)

	weekly := marchGoal()
	weekly.RecurrencePattern = task.PatternWeekly
	assert.False(t, engine.OverlapsRange(&weekly, marStart, marEnd), "weekly never occurs")
	assert.True(t, engine.SpansRange(&weekly, marStart, marEnd))
	assert.False(t, engine.SpansRange(&weekly, aprStart, aprEnd))

	daily := marchGoal()
	assert.Equal(t, engine.OverlapsRange(&daily, marStart, marEnd), engine.SpansRange(&daily, marStart, marEnd))

	broken := weekly
	broken.RecurrenceEndDate = "someday"
	assert.False(t, engine.SpansRange(&broken, marStart, marEnd))
}

func TestEngine_Occurrences(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	engine := NewEngineWithConfig(EngineConfig{Location: ny})

	// The March 10th DST change must not skip or duplicate a day.
	goal := task.Task{
		ID:                "goal",
		DueDate:           "2024-03-01",
		IsRecurring:       true,
		RecurrencePattern: task.PatternDaily,
		RecurrenceEndDate: "2024-03-31",
	}
	days, err := engine.Occurrences(&goal, NewDate(2024, time.February, 20), NewDate(2024, time.April, 10))
	require.NoError(t, err)
	require.Len(t, days, 31)
	for i, d := range days {
		assert.Equal(t, NewDate(2024, time.March, i+1), d)
	}
}

func TestEngine_Occurrences_AgreesWithOccursOn(t *testing.T) {
	engine := utcEngine()
	goal := marchGoal()
	goal.DueDate = "2024-03-10T09:00:00Z"
	goal.RecurrenceEndDate = ""

	from, to := NewDate(2024, time.March, 1), NewDate(2024, time.March, 31)
	days, err := engine.Occurrences(&goal, from, to)
	require.NoError(t, err)

	var want []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		if engine.OccursOn(&goal, d) {
			want = append(want, d)
		}
	}
	assert.Equal(t, want, days)
	assert.Len(t, days, 22)
}

func TestEngine_Occurrences_NonRecurringAndUnsupported(t *testing.T) {
	engine := utcEngine()
	from, to := NewDate(2024, time.March, 1), NewDate(2024, time.March, 31)

	one := task.Task{DueDate: "2024-03-15"}
	days, err := engine.Occurrences(&one, from, to)
	require.NoError(t, err)
	assert.Equal(t, []Date{NewDate(2024, time.March, 15)}, days)

	weekly := task.Task{DueDate: "2024-03-01", IsRecurring: true, RecurrencePattern: task.PatternWeekly}
	days, err = engine.Occurrences(&weekly, from, to)
	require.NoError(t, err)
	assert.Empty(t, days)

	days, err = engine.Occurrences(&one, to, from)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestEngine_Occurrences_Capped(t *testing.T) {
	cfg := DisabledCacheConfig
	cfg.Location = time.UTC
	cfg.MaxExpansionDays = 10
	engine := NewEngineWithConfig(cfg)

	open := task.Task{DueDate: "2024-01-01", IsRecurring: true, RecurrencePattern: task.PatternDaily}
	days, err := engine.Occurrences(&open, NewDate(2024, time.January, 1), NewDate(2024, time.December, 31))
	require.NoError(t, err)
	assert.Len(t, days, 10)
}

func TestEngine_Cached(t *testing.T) {
	cfg := DefaultEngineConfig
	cfg.Location = time.UTC
	engine := NewEngineWithConfig(cfg)
	defer engine.Close()

	goal := marchGoal()
	d := NewDate(2024, time.March, 3)

	assert.True(t, engine.OccursOn(&goal, d))
	assert.True(t, engine.OccursOn(&goal, d))
	assert.Equal(t, task.StatusPending, engine.EffectiveStatus(&goal, d))
	assert.Equal(t, 2, engine.CacheStats().TotalEntries)

	// A new snapshot of the task must not reuse the old answer.
	goal.CompletedDates = []string{d.Key()}
	assert.Equal(t, task.StatusCompleted, engine.EffectiveStatus(&goal, d))

	goal.RecurrenceEndDate = "2024-03-02"
	assert.False(t, engine.OccursOn(&goal, d))
}

func TestPackageLevelHelpers(t *testing.T) {
	one := task.Task{DueDate: "2024-03-15", Status: task.StatusCompleted}
	d := NewDate(2024, time.March, 15)
	assert.True(t, OccursOn(&one, d))
	assert.Equal(t, task.StatusCompleted, EffectiveStatus(&one, d))
}
