package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyp0633/tasklens/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	configPath string
	timezone   string
	date       string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "tasklens",
		Short:         "tasklens - daily and monthly views over your Task Service tasks",
		Long:          "tasklens shows which tasks occur on a day or in a month, tracks per-day completion of recurring goals, and syncs changes to the Task Service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default is the user config dir)")
	cmd.PersistentFlags().StringVar(&flags.timezone, "tz", "", "Timezone override, e.g. Europe/Berlin")
	cmd.PersistentFlags().StringVarP(&flags.date, "date", "d", "", "Day to act on as YYYY-MM-DD (default today)")

	cmd.AddCommand(
		newTodayCmd(flags),
		newMonthCmd(flags),
		newDayCmd(flags),
		newCalendarCmd(flags),
		newListCmd(flags),
		newAddCmd(flags),
		newStatusCmd(flags),
		newDoneCmd(flags, true),
		newDoneCmd(flags, false),
		newReanalyzeCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newWatchCmd(flags),
		newConfigCmd(flags),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
