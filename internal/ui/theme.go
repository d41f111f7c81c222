package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cyp0633/tasklens/task"
)

// tasklens theme for CLI output.

const (
	IconToday    = "📅"
	IconMonth    = "🗓️"
	IconList     = "📋"
	IconDone     = "✅"
	IconPending  = "⬜"
	IconProgress = "🔄"
	IconLoop     = "🔁"
	IconInfo     = "ℹ️"
	IconWarn     = "⚠️"
	IconError    = "🧨"
	IconStats    = "📊"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	Cell  = lipgloss.NewStyle().Width(6).Align(lipgloss.Right)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func StatusText(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return Good.Render(IconDone + " completed")
	case task.StatusInProgress:
		return H2.Render(IconProgress + " in progress")
	case task.StatusPending:
		return Warn.Render(IconPending + " pending")
	case task.StatusCancelled:
		return Muted.Render("cancelled")
	default:
		return Muted.Render(string(s))
	}
}

func QuadrantText(q task.Quadrant) string {
	label := fmt.Sprintf("%s %s", q, q.Label())
	switch q {
	case task.Q1:
		return Bad.Render(label)
	case task.Q2:
		return Gold.Render(label)
	case task.Q3:
		return H2.Render(label)
	case task.Q4:
		return Muted.Render(label)
	default:
		return Muted.Render(q.Label())
	}
}

// TaskLine renders one task row: status, title, quadrant and id.
func TaskLine(t task.Task) string {
	var b strings.Builder
	b.WriteString(StatusText(t.Status))
	b.WriteString("  ")
	b.WriteString(t.Title)
	if t.IsRecurring {
		b.WriteString(" " + IconLoop)
	}
	b.WriteString("  ")
	b.WriteString(QuadrantText(t.PriorityQuadrant))
	b.WriteString("  ")
	b.WriteString(Muted.Render("#" + t.ID))
	return b.String()
}
