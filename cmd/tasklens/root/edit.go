package root

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyp0633/tasklens/internal/ui"
	"github.com/cyp0633/tasklens/occurrence"
	"github.com/cyp0633/tasklens/task"
)

func newAddCmd(flags *globalFlags) *cobra.Command {
	var in task.Input
	var typ, pattern string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			in.Title = args[0]
			if in.TaskType, err = task.ParseType(typ); err != nil {
				return err
			}
			if in.RecurrencePattern, err = task.ParsePattern(pattern); err != nil {
				return err
			}
			if in.RecurrencePattern != task.PatternNone {
				in.IsRecurring = true
			}

			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			created, err := a.store.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("created")+"  "+ui.TaskLine(created))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Description, "desc", "", "Description")
	cmd.Flags().IntVarP(&in.Urgency, "urgency", "u", 0, "Urgency (1-4, 0 lets the service decide)")
	cmd.Flags().IntVarP(&in.Importance, "importance", "i", 0, "Importance (1-4, 0 lets the service decide)")
	cmd.Flags().StringVarP(&typ, "type", "t", "none", "Task type (daily|monthly|none)")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date or recurrence start (ISO-8601)")
	cmd.Flags().StringVar(&pattern, "repeat", "", "Recurrence pattern (daily|weekly|monthly)")
	cmd.Flags().StringVar(&in.RecurrenceEndDate, "until", "", "Last day of the recurrence, inclusive")
	return cmd
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "status <id> <pending|in_progress|completed|cancelled>",
		Short: "Set the status of a task's occurrence (cancelled deletes the task)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := task.ParseStatus(args[1])
			if err != nil {
				return err
			}

			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if global {
				err = a.store.SetStatus(cmd.Context(), args[0], status)
			} else {
				d, derr := a.day(flags)
				if derr != nil {
					return derr
				}
				err = a.store.SetOccurrenceStatus(cmd.Context(), args[0], d, status)
			}
			if err != nil {
				return err
			}

			if status == task.StatusCancelled {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("deleted #"+args[0]))
				return nil
			}
			t, err := a.store.Get(args[0])
			if err != nil {
				return err
			}
			d, _ := a.day(flags)
			t.Status = a.engine.EffectiveStatus(&t, d)
			fmt.Fprintln(cmd.OutOrStdout(), ui.TaskLine(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Set the stored status instead of the occurrence on --date")
	return cmd
}

func newDoneCmd(flags *globalFlags, done bool) *cobra.Command {
	use, short := "done <id>", "Mark a task's occurrence on --date completed"
	if !done {
		use, short = "undone <id>", "Mark a task's occurrence on --date pending again"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := a.day(flags)
			if err != nil {
				return err
			}
			t, err := a.store.CompleteOccurrence(cmd.Context(), args[0], d, done)
			if err != nil {
				return err
			}
			t.Status = a.engine.EffectiveStatus(&t, d)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(d.Key())+"  "+ui.TaskLine(t))
			return nil
		},
	}
	return cmd
}

func newReanalyzeCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reanalyze <id>",
		Short: "Ask the service to re-derive urgency and importance from the description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := a.store.Get(args[0]); err != nil {
				return err
			}
			t, err := a.client.Reanalyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.TaskLine(*t))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Urgency", t.Urgency)+"  "+ui.LabelValue("Importance", t.Importance))
			return nil
		},
	}
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as an iCalendar file of VTODOs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, cerr := os.Create(outPath)
				if cerr != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, cerr)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = fmt.Errorf("failed to write %s: %w", outPath, cerr)
					}
				}()
				w = f
			}
			return a.engine.ExportCalendar(w, a.store.Tasks())
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Output file, - for stdout")
	return cmd
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Create tasks from the VTODOs of an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := a.engine.ImportCalendar(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := range tasks {
				if dryRun {
					fmt.Fprintln(out, ui.Muted.Render("would create")+"  "+ui.TaskLine(tasks[i]))
					continue
				}
				created, err := importTask(cmd, a, tasks[i])
				if err != nil {
					return fmt.Errorf("failed to import %q: %w", tasks[i].Title, err)
				}
				fmt.Fprintln(out, ui.Good.Render("created")+"  "+ui.TaskLine(created))
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No tasks in "+args[0]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the tasks without creating them")
	return cmd
}

// importTask creates t as a new task and replays its per-day completions.
// The service assigns a fresh id and priority.
func importTask(cmd *cobra.Command, a *app, t task.Task) (task.Task, error) {
	created, err := a.store.Create(cmd.Context(), task.Input{
		Title:             t.Title,
		Description:       t.Description,
		TaskType:          t.Kind(),
		DueDate:           t.DueDate,
		IsRecurring:       t.IsRecurring,
		RecurrencePattern: t.RecurrencePattern,
		RecurrenceEndDate: t.RecurrenceEndDate,
	})
	if err != nil {
		return task.Task{}, err
	}

	for _, key := range t.CompletedDates {
		d, err := occurrence.ParseKey(key)
		if err != nil {
			a.logger.Warn("skipping malformed completion date", "task", created.ID, "date", key)
			continue
		}
		if created, err = a.store.CompleteOccurrence(cmd.Context(), created.ID, d, true); err != nil {
			return task.Task{}, err
		}
	}
	if !t.IsRecurring && t.Status != "" && t.Status != created.Status && t.Status != task.StatusCancelled {
		if err := a.store.SetStatus(cmd.Context(), created.ID, t.Status); err != nil {
			return task.Task{}, err
		}
		return a.store.Get(created.ID)
	}
	return created, nil
}
