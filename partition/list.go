package partition

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cyp0633/tasklens/task"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter selects tasks in the general list view.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterActive     Filter = "active"
	FilterPending    Filter = "pending"
	FilterInProgress Filter = "in_progress"
	FilterCompleted  Filter = "completed"
)

func ParseFilter(input string) (Filter, error) {
	f := Filter(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(input)), "-", "_"))
	switch f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterPending, FilterInProgress, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("invalid filter: %q", input)
	}
}

func (f Filter) match(t *task.Task) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterActive:
		return t.Status != task.StatusCompleted && t.Status != task.StatusCancelled
	default:
		return t.Status == task.Status(f)
	}
}

// SortKey orders the general list view.
type SortKey string

const (
	SortPriority SortKey = "priority" // priority_score, highest first
	SortDate     SortKey = "date"     // created_at, newest first
	SortTitle    SortKey = "title"
)

func ParseSortKey(input string) (SortKey, error) {
	k := SortKey(strings.TrimSpace(strings.ToLower(input)))
	switch k {
	case "":
		return SortPriority, nil
	case SortPriority, SortDate, SortTitle:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort key: %q", input)
	}
}

// Options configures List.
type Options struct {
	Filter Filter
	Sort   SortKey
}

// Listing is the general list view: the filtered and sorted tasks, and the
// same tasks bucketed by quadrant in the same order.
type Listing struct {
	Tasks     []task.Task
	Quadrants map[task.Quadrant][]task.Task
}

// List filters and sorts tasks for the general list view.
func List(tasks []task.Task, opts Options) Listing {
	out := make([]task.Task, 0, len(tasks))
	for i := range tasks {
		if opts.Filter.match(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}

	switch opts.Sort {
	case SortDate:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt.Time)
		})
	case SortTitle:
		col := collate.New(language.Und, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return col.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return b.PriorityScore - a.PriorityScore
		})
	}

	listing := Listing{
		Tasks:     out,
		Quadrants: make(map[task.Quadrant][]task.Task, len(task.Quadrants)),
	}
	for _, q := range task.Quadrants {
		listing.Quadrants[q] = []task.Task{}
	}
	for _, t := range out {
		if t.PriorityQuadrant.IsValid() {
			listing.Quadrants[t.PriorityQuadrant] = append(listing.Quadrants[t.PriorityQuadrant], t)
		}
	}
	return listing
}
