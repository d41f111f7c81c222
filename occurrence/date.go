package occurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/tasklens/task"
)

// KeyLayout is the canonical, zero-padded date key used in completed_dates.
const KeyLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the way time.Date does, so
// NewDate(2024, time.February, 30) is March 1.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(orLocal(loc)))
}

// ParseKey parses a YYYY-MM-DD key.
func ParseKey(s string) (Date, error) {
	t, err := time.Parse(KeyLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("failed to parse date key %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Key returns the canonical YYYY-MM-DD form of d.
func (d Date) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) String() string { return d.Key() }

// Start is 00:00:00.000 of d in loc.
func (d Date) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, orLocal(loc))
}

// End is the last representable instant of d in loc.
func (d Date) End(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999_999_999, orLocal(loc))
}

// AddDays moves d by n calendar days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	return DateOf(t.In(orLocal(loc))).Start(loc)
}

// EndOfDay moves t to the last instant of its calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return DateOf(t.In(orLocal(loc))).End(loc)
}

// ParseDate parses an ISO-8601 date or date-time with the service layouts.
// Values with a zone are converted into loc; values without one are read as
// wall-clock time in loc.
func ParseDate(s string, loc *time.Location) mo.Result[time.Time] {
	s = strings.TrimSpace(s)
	if s == "" {
		return mo.Err[time.Time](fmt.Errorf("empty date"))
	}
	loc = orLocal(loc)

	for _, layout := range task.ZonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return mo.Ok(t.In(loc))
		}
	}
	for _, layout := range task.NaiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return mo.Ok(t)
		}
	}
	return mo.Err[time.Time](fmt.Errorf("unrecognized date %q", s))
}

// DayOf returns the calendar day of s in loc, or None when s is malformed.
func DayOf(s string, loc *time.Location) mo.Option[Date] {
	t, err := ParseDate(s, loc).Get()
	if err != nil {
		return mo.None[Date]()
	}
	return mo.Some(DateOf(t))
}

// DayStart is StartOfDay of the parsed value, or None when s is malformed.
func DayStart(s string, loc *time.Location) mo.Option[time.Time] {
	d, ok := DayOf(s, loc).Get()
	if !ok {
		return mo.None[time.Time]()
	}
	return mo.Some(d.Start(loc))
}

// DayEnd is EndOfDay of the parsed value, or None when s is malformed.
func DayEnd(s string, loc *time.Location) mo.Option[time.Time] {
	d, ok := DayOf(s, loc).Get()
	if !ok {
		return mo.None[time.Time]()
	}
	return mo.Some(d.End(loc))
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the start of the first day and the end of the last day
// of month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := Date{Year: year, Month: month, Day: 1}
	last := Date{Year: year, Month: month, Day: DaysIn(year, month)}
	return first.Start(loc), last.End(loc)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
