package root

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyp0633/tasklens/internal/ui"
	"github.com/cyp0633/tasklens/taskclient"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var retry time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the daily list and redraw it whenever a task changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, cleanup, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			watcher, err := taskclient.NewWatcher(taskclient.WatchOptions{
				URL:     a.cfg.API.EventsURL,
				BaseURL: a.cfg.API.BaseURL,
				Token:   a.cfg.API.Token,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := renderToday(out, a, flags); err != nil {
				return err
			}

			onUpdate := func(ev taskclient.Event) error {
				a.logger.Info("task update", "action", ev.Action)
				if err := a.store.Refresh(ctx); err != nil {
					return err
				}
				label := ev.Action
				if ev.Task != nil {
					label += " #" + ev.Task.ID
				}
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.Muted.Render(time.Now().Format(time.Kitchen)+"  "+label))
				return renderToday(out, a, flags)
			}

			for {
				err := watcher.Watch(ctx, onUpdate)
				if ctx.Err() != nil {
					return nil
				}
				if retry <= 0 {
					return err
				}
				a.logger.Warn("task updates disconnected, reconnecting", "error", err, "retry", retry)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(retry):
				}
			}
		},
	}

	cmd.Flags().DurationVar(&retry, "retry", 5*time.Second, "Delay before reconnecting when the socket closes, 0 to exit instead")
	return cmd
}
