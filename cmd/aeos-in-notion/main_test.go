package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/config"
	"aeosinnotion/pkg/persistence"
	"aeosinnotion/pkg/plugins/aeosinnotion"
	"aeosinnotion/pkg/plugins/notionpages"
	"aeosinnotion/pkg/poller"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config.Overrides
	}{
		{"short", []string{"-t", "tasks", "-c", "cmds", "-n", "bob", "-d", "-l"},
			config.Overrides{TasksDB: "tasks", CommandsDB: "cmds", Name: "bob", Debug: true, LogToFile: true}},
		{"long", []string{"--tasksDB=tasks", "--commandsDB", "cmds", "--name", "bob", "--debug", "--log"},
			config.Overrides{TasksDB: "tasks", CommandsDB: "cmds", Name: "bob", Debug: true, LogToFile: true}},
		{"none", nil, config.Overrides{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.overrides)
		})
	}

	_, err := parseFlags([]string{"--bogus"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = parseFlags([]string{"extra"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"--version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "aeos-in-notion")
}

func TestRunBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"--bogus"}, &stdout, &stderr))
}

const commandsYAML = `
commands:
  - format: "morning routine"
    sequence:
      - "notify Morning: started"
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	commandsFile := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(commandsFile, []byte(commandsYAML), 0644))

	cfg := config.Default()
	cfg.Notion.APIKey = "secret"
	cfg.Notion.TasksDB = "tasks-db"
	cfg.CommandsFile = commandsFile
	cfg.JournalPath = filepath.Join(dir, "journal.db")
	cfg.TextGen.Provider = config.ProviderNone
	return cfg
}

func TestNewAppWiring(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	formats := a.registry.Formats()
	assert.Contains(t, formats, aeos.NotifyFormat)
	assert.Contains(t, formats, "morning routine")
	assert.Contains(t, formats, aeosinnotion.FormatCreateTask)
	assert.NotContains(t, formats, notionpages.FormatAddPage, "pages plugin needs a database id")
	assert.NotNil(t, a.journal)

	// The relay handler is registered but has no task to comment on.
	assert.Equal(t, 0, a.notifier.Notify(context.Background(), "Build", "green"))
}

func TestNewAppPagesPlugin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notion.PagesDB = "pages-db"

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Contains(t, a.registry.Formats(), notionpages.FormatAddPage)
}

func TestNewAppMissingCommandsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.CommandsFile = filepath.Join(t.TempDir(), "absent.yaml")

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.NotContains(t, a.registry.Formats(), "morning routine")
}

func TestNewAppRejectsBadCommands(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.CommandsFile, []byte("commands: [\n"), 0644))

	_, err := newApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestAppStatus(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	status := a.status("aeos")()
	assert.Equal(t, "aeos", status["worker"])
	assert.Equal(t, poller.StateIdle.String(), status["state"])
	assert.Equal(t, "", status["current_task"])
	assert.Equal(t, 0, status["notion_queue"])
	assert.NotContains(t, status, "last_run")

	ctx := context.Background()
	runID, err := a.journal.StartRun(ctx, "task-1", "Weekly report", "aeos")
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, a.journal.RecordStep(ctx, runID, &persistence.Step{Command: "say hi", Success: true, StartedAt: now, FinishedAt: now}))
	require.NoError(t, a.journal.FinishRun(ctx, runID, persistence.RunDone, ""))

	last, ok := a.status("aeos")()["last_run"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, runID, last["id"])
	assert.Equal(t, "Weekly report", last["task"])
	assert.Equal(t, persistence.RunDone, last["status"])
	assert.Equal(t, 1, last["steps"])
}
