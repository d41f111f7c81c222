package root

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyp0633/tasklens/internal/ui"
	"github.com/cyp0633/tasklens/partition"
	"github.com/cyp0633/tasklens/task"
)

func printTasks(w io.Writer, tasks []task.Task, empty string) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, ui.Muted.Render(empty))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, "- "+ui.TaskLine(t))
	}
}

func printSummary(w io.Writer, s partition.Summary) {
	fmt.Fprintln(w, ui.LabelValue("Tasks", s.Total))
	fmt.Fprintln(w, ui.LabelValue("Completed", fmt.Sprintf("%d (%.2f%%)", s.ByStatus[task.StatusCompleted], s.CompletionRate)))
	fmt.Fprintln(w, ui.LabelValue("In progress", s.ByStatus[task.StatusInProgress]))
	fmt.Fprintln(w, ui.LabelValue("Pending", s.ByStatus[task.StatusPending]))
	if s.Recurring > 0 {
		fmt.Fprintln(w, ui.LabelValue("Recurring", s.Recurring))
	}
}

func newTodayCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the daily list (daily tasks and active monthly goals)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			return renderToday(cmd.OutOrStdout(), a, flags)
		},
	}
	return cmd
}

// renderToday prints the daily list for --date, or for today.
func renderToday(out io.Writer, a *app, flags *globalFlags) error {
	d, err := a.day(flags)
	if err != nil {
		return err
	}
	shown := a.parts.WithEffectiveStatus(a.parts.ForDaily(a.store.Tasks(), d), d)

	fmt.Fprintln(out, ui.Heading(ui.IconToday, "Today "+d.Key()))
	printTasks(out, shown, "Nothing scheduled.")
	fmt.Fprintln(out, "")
	printSummary(out, partition.Summarize(shown))
	return nil
}

func newMonthCmd(flags *globalFlags) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the month tracker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			today, err := a.day(flags)
			if err != nil {
				return err
			}
			year, month, err := parseMonth(args, today)
			if err != nil {
				return err
			}

			tasks := a.parts.ForMonth(a.store.Tasks(), year, month)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMonth, fmt.Sprintf("%s %d", month, year)))
			printTasks(out, tasks, "No tasks this month.")
			fmt.Fprintln(out, "")

			if !remote {
				printSummary(out, partition.Summarize(tasks))
				return nil
			}

			stats, err := a.client.GetAnalytics(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconStats+" Service analytics"))
			fmt.Fprintln(out, ui.LabelValue("Tasks", stats.TotalTasks))
			fmt.Fprintln(out, ui.LabelValue("Completed", fmt.Sprintf("%d (%.2f%%)", stats.CompletedTasks, stats.CompletionRate)))
			fmt.Fprintln(out, ui.LabelValue("Avg urgency", fmt.Sprintf("%.2f", stats.AvgUrgency)))
			fmt.Fprintln(out, ui.LabelValue("Avg importance", fmt.Sprintf("%.2f", stats.AvgImportance)))
			for _, q := range task.Quadrants {
				if n := stats.PriorityBreakdown[q]; n > 0 {
					fmt.Fprintf(out, "- %s %d\n", ui.QuadrantText(q), n)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "analytics", false, "Also fetch the service's analytics summary")
	return cmd
}

func newDayCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show the month tracker's tasks occurring on one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if flags.date != "" && flags.date != args[0] {
					return errors.New("give the day either as argument or as --date")
				}
				flags.date = args[0]
			}

			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := a.day(flags)
			if err != nil {
				return err
			}
			shown := a.parts.WithEffectiveStatus(a.parts.ForDay(a.store.Tasks(), d), d)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMonth, d.Key()))
			printTasks(out, shown, "Nothing on this day.")
			return nil
		},
	}
	return cmd
}

func newCalendarCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month grid with the number of open tasks per day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			today, err := a.day(flags)
			if err != nil {
				return err
			}
			year, month, err := parseMonth(args, today)
			if err != nil {
				return err
			}

			cells := a.parts.CalendarGrid(a.store.Tasks(), year, month)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMonth, fmt.Sprintf("%s %d", month, year)))

			var header strings.Builder
			for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
				header.WriteString(ui.Cell.Render(name))
			}
			fmt.Fprintln(out, ui.Key.Render(header.String()))

			var row strings.Builder
			// Monday-first offset of the 1st.
			offset := (int(cells[0].Date.Start(a.engine.Location()).Weekday()) + 6) % 7
			for i := 0; i < offset; i++ {
				row.WriteString(ui.Cell.Render(""))
			}
			for i, c := range cells {
				open := 0
				for _, t := range c.Tasks {
					if t.Status != task.StatusCompleted {
						open++
					}
				}
				label := fmt.Sprintf("%d", c.Date.Day)
				if open > 0 {
					label = fmt.Sprintf("%d·%d", c.Date.Day, open)
				}
				style := ui.Cell
				if c.Date == today {
					style = style.Foreground(ui.Gold.GetForeground())
				}
				row.WriteString(style.Render(label))
				if (offset+i+1)%7 == 0 {
					fmt.Fprintln(out, row.String())
					row.Reset()
				}
			}
			if row.Len() > 0 {
				fmt.Fprintln(out, row.String())
			}
			return nil
		},
	}
	return cmd
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var filter string
	var sortKey string
	var byQuadrant bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := partition.ParseFilter(filter)
			if err != nil {
				return err
			}
			k, err := partition.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			listing := partition.List(a.store.Tasks(), partition.Options{Filter: f, Sort: k})
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconList, "Tasks"))

			if !byQuadrant {
				printTasks(out, listing.Tasks, "No tasks.")
				return nil
			}
			for _, q := range task.Quadrants {
				fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s (%d)", ui.QuadrantText(q), len(listing.Quadrants[q]))))
				printTasks(out, listing.Quadrants[q], "(empty)")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter (all|active|pending|in_progress|completed)")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "priority", "Sort by (priority|date|title)")
	cmd.Flags().BoolVarP(&byQuadrant, "quadrants", "q", false, "Group by Eisenhower quadrant")
	return cmd
}
