// Package aeosinnotion provides the commands that schedule work on the Notion task
// board and mirror the command catalog into the commands database.
package aeosinnotion

import (
	"context"
	"strings"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/notion"
)

// Command formats.
const (
	FormatCreateTaskFromPrompt = "aeos-in-notion:create task to ${prompt}"
	FormatCreateTask           = "aeos-in-notion:create task with ${title} ${description} ${tasks}"
	FormatCreateTaskWithIcon   = "aeos-in-notion:create task with icon ${icon} ${title} ${description} ${tasks}"
	FormatImportCommand        = "aeos-in-notion:import command ${command}"
	FormatImportAll            = "aeos-in-notion:import all commands"
)

// Workspace is the slice of the Notion workspace these commands use.
type Workspace interface {
	CreatePage(ctx context.Context, databaseID, title, icon string, children []notion.Block, assignee string) string
	AppendChildren(ctx context.Context, blockID string, children []notion.Block) string
	CommentOnPage(ctx context.Context, pageID, text string) aeos.Result
	FindPageByTitle(ctx context.Context, databaseID, title string) string
}

// Catalog is the command registry as seen by the import commands.
type Catalog interface {
	Lookup(format string) (*aeos.Command, bool)
	Formats() []string
}

// Planner turns a checklist text into executables.
type Planner interface {
	Plan(ctx context.Context, text string) ([]aeos.Executable, error)
}

// Options configures the plugin.
type Options struct {
	TasksDB    string
	CommandsDB string
	// Name is the worker name new tasks are assigned to.
	Name string
}

// Plugin implements aeos.Plugin.
//
//nolint:govet // fieldalignment: Logical grouping preferred over memory optimization
type Plugin struct {
	workspace Workspace
	catalog   Catalog
	planner   Planner
	generator aeos.TextGenerator
	opts      Options
	logger    *logx.Logger
}

// New creates the plugin. generator may be nil, in which case tasks cannot be created from a prompt.
func New(ws Workspace, catalog Catalog, planner Planner, generator aeos.TextGenerator, opts Options) *Plugin {
	return &Plugin{
		workspace: ws,
		catalog:   catalog,
		planner:   planner,
		generator: generator,
		opts:      opts,
		logger:    logx.NewLogger("aeos-in-notion"),
	}
}

// Name implements aeos.Plugin.
func (p *Plugin) Name() string { return "aeos-in-notion" }

// Description implements aeos.Plugin.
func (p *Plugin) Description() string {
	return "Aeos In Notion - Schedule and monitor an army of aeos agents in Notion"
}

// Version implements aeos.Plugin.
func (p *Plugin) Version() string { return "0.0.1" }

// Enabled implements aeos.Plugin.
func (p *Plugin) Enabled() bool { return true }

// Commands implements aeos.Plugin.
func (p *Plugin) Commands() []aeos.Command {
	return []aeos.Command{
		{Format: FormatCreateTaskFromPrompt, Description: "Create a task on the board from a free-text prompt", Function: p.createTaskFromPrompt},
		{Format: FormatCreateTask, Description: "Create a task on the board with a checklist of commands", Function: p.createTask},
		{Format: FormatCreateTaskWithIcon, Description: "Create a task with an icon and a checklist of commands", Function: p.createTask},
		{Format: FormatImportCommand, Description: "Mirror a command definition into the commands database", Function: p.importCommand},
		{Format: FormatImportAll, Description: "Mirror every registered command into the commands database", Function: p.importAll},
	}
}

func trimGenerated(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
