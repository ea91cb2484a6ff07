package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/config"
	"aeosinnotion/pkg/limiter"
	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/metrics"
	"aeosinnotion/pkg/notion"
	"aeosinnotion/pkg/persistence"
	"aeosinnotion/pkg/plugins/aeosinnotion"
	"aeosinnotion/pkg/plugins/notionpages"
	"aeosinnotion/pkg/poller"
	"aeosinnotion/pkg/textgen"
)

const statusTimeout = 2 * time.Second

// app owns every long-lived component of the worker.
//
//nolint:govet // fieldalignment: Logical grouping preferred over memory optimization
type app struct {
	limiter  *limiter.Limiter
	registry *aeos.Registry
	notifier *aeos.Notifier
	poller   *poller.Poller
	journal  *persistence.Journal
	recorder *metrics.PrometheusRecorder
	logger   *logx.Logger
}

// newApp wires the worker. The metrics server, when configured, lives until ctx is done.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		recorder: metrics.NewPrometheusRecorder(),
		logger:   logx.NewLogger("aeos-in-notion"),
	}

	a.limiter = limiter.New(cfg.Notion.RequestSpacing.Std(), a.recorder)
	client := notion.NewClient(cfg.Notion.BaseURL, cfg.Notion.APIKey, a.limiter, a.recorder)
	workspace := notion.NewWorkspace(client)

	gen, err := textgen.New(&cfg.TextGen, a.recorder)
	if err != nil {
		a.limiter.Close()
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	var generator aeos.TextGenerator
	if _, disabled := gen.(textgen.Disabled); disabled {
		a.logger.Info("Text generation disabled; tasks cannot be created from a prompt")
	} else {
		generator = gen
	}

	a.registry = aeos.NewRegistry()
	a.notifier = aeos.NewNotifier()
	if err := a.registry.Register(a.notifier.Command()); err != nil {
		a.limiter.Close()
		return nil, fmt.Errorf("failed to register notify command: %w", err)
	}
	if err := a.loadCommands(cfg.CommandsFile); err != nil {
		a.limiter.Close()
		return nil, err
	}

	planner := aeos.NewPlanner(a.registry, generator)
	plugins := []aeos.Plugin{
		aeosinnotion.New(workspace, a.registry, planner, generator, aeosinnotion.Options{
			TasksDB:    cfg.Notion.TasksDB,
			CommandsDB: cfg.Notion.CommandsDB,
			Name:       cfg.Worker.Name,
		}),
		notionpages.New(workspace, cfg.Notion.PagesDB),
	}
	for _, p := range plugins {
		if err := a.registry.RegisterPlugin(p); err != nil {
			a.limiter.Close()
			return nil, fmt.Errorf("failed to register plugin %s: %w", p.Name(), err)
		}
	}

	opts := poller.Options{
		TasksDB:      cfg.Notion.TasksDB,
		Name:         cfg.Worker.Name,
		PollInterval: cfg.Worker.PollInterval.Std(),
		StartDelay:   cfg.Worker.StartDelay.Std(),
		Recorder:     a.recorder,
	}
	if j := a.openJournal(cfg.JournalPath); j != nil {
		a.journal = j
		opts.Journal = j
	}
	a.poller = poller.New(workspace, aeos.NewRunner(a.registry), opts)
	a.notifier.Register(poller.RelayHandlerName, a.poller.CommentOnCurrentTask)

	if cfg.MetricsAddr != "" {
		mux := metrics.NewMux(a.recorder, config.DefaultMetricsRoute, a.status(cfg.Worker.Name))
		if _, err := metrics.StartServer(ctx, cfg.MetricsAddr, mux); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.logger.Info("Registered %d commands from %d plugins", len(a.registry.Formats()), len(a.registry.Plugins()))
	return a, nil
}

// loadCommands registers the sequence commands of path. A missing file is not an error.
func (a *app) loadCommands(path string) error {
	if path == "" {
		return nil
	}
	commands, err := aeos.LoadCommandsFile(path)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Debug("no commands file at %s", path)
		return nil
	}
	if err != nil {
		return err //nolint:wrapcheck // already wrapped with the path
	}
	if err := a.registry.RegisterAll(commands); err != nil {
		return fmt.Errorf("failed to register commands from %s: %w", path, err)
	}
	a.logger.Info("Loaded %d commands from %s", len(commands), path)
	return nil
}

// openJournal opens the run journal, or returns nil when it is unavailable.
func (a *app) openJournal(path string) *persistence.Journal {
	if path == "" {
		path = filepath.Join(config.ProjectConfigDir, config.DatabaseFilename)
	}
	j, err := persistence.Open(path, uuid.New().String())
	if err != nil {
		a.logger.Warn("run journal disabled: %v", err)
		return nil
	}
	return j
}

func (a *app) status(name string) metrics.StatusFunc {
	return func() map[string]any {
		stats := a.limiter.Stats()
		body := map[string]any{
			"worker":       name,
			"state":        a.poller.State().String(),
			"current_task": a.poller.CurrentTask(),
			"notion_queue": stats.Queued,
			"notion_calls": stats.Executed,
		}
		if last := a.lastRun(); last != nil {
			body["last_run"] = last
		}
		return body
	}
}

// lastRun summarizes the most recent journaled run, or returns nil when there is none.
func (a *app) lastRun() map[string]any {
	if a.journal == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	runs, err := a.journal.ListRuns(ctx, "", 1)
	if err != nil {
		a.logger.Warn("failed to read last run: %v", err)
		return nil
	}
	if len(runs) == 0 {
		return nil
	}
	run := runs[0]
	summary := map[string]any{
		"id":         run.ID,
		"task":       run.TaskTitle,
		"status":     run.Status,
		"started_at": run.StartedAt,
	}
	if steps, err := a.journal.Steps(ctx, run.ID); err == nil {
		summary["steps"] = len(steps)
	}
	return summary
}

// Close detaches the task relay, then releases the limiter and the journal.
func (a *app) Close() {
	a.notifier.Unregister(poller.RelayHandlerName)
	a.limiter.Close()
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("%v", err)
		}
	}
}
