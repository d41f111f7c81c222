package root

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyp0633/tasklens/config"
	"github.com/cyp0633/tasklens/occurrence"
	"github.com/cyp0633/tasklens/partition"
	"github.com/cyp0633/tasklens/store"
	"github.com/cyp0633/tasklens/taskclient"
)

// app bundles what a command needs after config is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *occurrence.Engine
	parts  *partition.Partitioner
	client *taskclient.Client
	store  *store.Store
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.timezone != "" {
		cfg.Timezone = flags.timezone
		if _, err := cfg.Location(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openApp loads config, builds the client and store, and loads the task
// collection.
func openApp(cmd *cobra.Command, flags *globalFlags) (*app, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ec, err := cfg.EngineConfig()
	if err != nil {
		return nil, nil, err
	}
	engine := occurrence.NewEngineWithConfig(ec)

	client, err := taskclient.New(taskclient.Options{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		engine.Close()
		return nil, nil, err
	}

	s := store.New(client, store.WithLogger(logger))
	if err := s.Refresh(cmd.Context()); err != nil {
		engine.Close()
		return nil, nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		parts:  partition.New(engine),
		client: client,
		store:  s,
	}
	return a, engine.Close, nil
}

// day resolves --date in the engine zone.
func (a *app) day(flags *globalFlags) (occurrence.Date, error) {
	if flags.date == "" {
		return occurrence.Today(a.engine.Location()), nil
	}
	d, err := occurrence.ParseKey(flags.date)
	if err != nil {
		return occurrence.Date{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", flags.date)
	}
	return d, nil
}

// parseMonth accepts YYYY-MM, defaulting to the month of fallback.
func parseMonth(args []string, fallback occurrence.Date) (int, time.Month, error) {
	if len(args) == 0 {
		return fallback.Year, fallback.Month, nil
	}
	t, err := time.Parse("2006-01", args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", args[0])
	}
	return t.Year(), t.Month(), nil
}
