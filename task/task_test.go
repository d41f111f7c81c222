package task

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateQuadrant(t *testing.T) {
	tests := []struct {
		urgency, importance int
		want                Quadrant
		score               int
	}{
		{4, 4, Q1, 1060},
		{3, 3, Q1, 1045},
		{1, 4, Q2, 730},
		{4, 2, Q3, 450},
		{2, 2, Q4, 130},
		{1, 1, Q4, 115},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("u%d_i%d", tt.urgency, tt.importance), func(t *testing.T) {
			q := CalculateQuadrant(tt.urgency, tt.importance)
			assert.Equal(t, tt.want, q)
			assert.Equal(t, tt.score, CalculateScore(tt.urgency, tt.importance, q))
		})
	}
}

func TestQuadrantLabel(t *testing.T) {
	assert.Equal(t, "Do First", Q1.Label())
	assert.Equal(t, "Eliminate", Q4.Label())
	assert.Equal(t, "Unknown", Quadrant("Q9").Label())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("blocked")
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, typ)

	typ, err = ParseType("Monthly")
	require.NoError(t, err)
	assert.Equal(t, TypeMonthly, typ)

	_, err = ParseType("yearly")
	assert.Error(t, err)
}

func TestUpdateApply_GlobalStatus(t *testing.T) {
	orig := Task{ID: "1", Status: StatusPending}
	got := StatusUpdate(StatusInProgress).Apply(orig)

	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, StatusPending, orig.Status, "original must not be mutated")
}

func TestUpdateApply_CompletionDate(t *testing.T) {
	done := StatusCompleted
	pending := StatusPending
	orig := Task{
		ID:             "r",
		Status:         StatusPending,
		IsRecurring:    true,
		CompletedDates: []string{"2024-03-01"},
	}

	added := Update{Status: &done, CompletionDate: "2024-03-02"}.Apply(orig)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, added.CompletedDates)
	assert.Equal(t, StatusPending, added.Status, "global status untouched")
	assert.Equal(t, []string{"2024-03-01"}, orig.CompletedDates)

	again := Update{Status: &done, CompletionDate: "2024-03-02"}.Apply(added)
	assert.Equal(t, added.CompletedDates, again.CompletedDates, "adding twice is a no-op")

	removed := Update{Status: &pending, CompletionDate: "2024-03-01"}.Apply(added)
	assert.Equal(t, []string{"2024-03-02"}, removed.CompletedDates)
}

func TestUpdateApply_CompletionDateOnNonRecurring(t *testing.T) {
	done := StatusCompleted
	got := Update{Status: &done, CompletionDate: "2024-03-02"}.Apply(Task{Status: StatusPending})
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Empty(t, got.CompletedDates)
}

func TestUpdateApply_Reprioritizes(t *testing.T) {
	u := 4
	orig := Task{Urgency: 1, Importance: 4}
	orig.Reprioritize()
	require.Equal(t, Q2, orig.PriorityQuadrant)

	got := Update{Urgency: &u}.Apply(orig)
	assert.Equal(t, Q1, got.PriorityQuadrant)
	assert.Equal(t, 1060, got.PriorityScore)
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"ok", Input{Title: "Write report", Urgency: 2, Importance: 3, TaskType: TypeDaily}, false},
		{"missing title", Input{Title: "  "}, true},
		{"urgency out of range", Input{Title: "x", Urgency: 5}, true},
		{"bad type", Input{Title: "x", TaskType: "yearly"}, true},
		{"recurring without pattern", Input{Title: "x", IsRecurring: true}, true},
		{"recurring daily", Input{Title: "x", IsRecurring: true, RecurrencePattern: PatternDaily}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("failed to update: %w", NotFound("abc"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrService))

	svc := &Error{Kind: KindServiceFailure, StatusCode: 500, Message: "boom"}
	assert.ErrorIs(t, svc, ErrService)
	assert.Equal(t, "service_failure: boom", svc.Error())
}

func TestClone(t *testing.T) {
	orig := Task{CompletedDates: []string{"2024-01-01"}, RecurrenceDays: []int{1}}
	c := orig.Clone()
	c.CompletedDates[0] = "changed"
	c.RecurrenceDays[0] = 7
	assert.Equal(t, "2024-01-01", orig.CompletedDates[0])
	assert.Equal(t, 1, orig.RecurrenceDays[0])
}
