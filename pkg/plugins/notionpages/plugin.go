// Package notionpages provides generic page commands against a single Notion database.
package notionpages

import (
	"context"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/notion"
)

// Command formats.
const (
	FormatAddPage         = "notion:add page called ${title}"
	FormatAddPageWithIcon = "notion:add page called ${title} with icon ${icon}"
	FormatRenamePage      = "notion:rename page ${id} to ${title}"
	FormatUpdateStatus    = "notion:update status of page ${id} to ${status}"
	FormatComment         = "notion:comment ${comment} on page ${id}"
	FormatDeletePage      = "notion:delete page with id ${id}"
)

// PageStore is the slice of the workspace these commands use.
type PageStore interface {
	CreatePage(ctx context.Context, databaseID, title, icon string, children []notion.Block, assignee string) string
	RenamePage(ctx context.Context, pageID, title string) aeos.Result
	UpdatePageStatus(ctx context.Context, pageID, status string) aeos.Result
	CommentOnPage(ctx context.Context, pageID, text string) aeos.Result
	ArchivePage(ctx context.Context, pageID string) aeos.Result
}

// Plugin exposes page commands. It is disabled when no database id is configured.
type Plugin struct {
	store      PageStore
	databaseID string
	logger     *logx.Logger
}

// New creates the plugin for databaseID.
func New(store PageStore, databaseID string) *Plugin {
	p := &Plugin{
		store:      store,
		databaseID: databaseID,
		logger:     logx.NewLogger("notion-plugin"),
	}
	if databaseID == "" {
		p.logger.Info("no pages database configured, notion plugin disabled")
	}
	return p
}

// Name implements aeos.Plugin.
func (p *Plugin) Name() string { return "Notion" }

// Description implements aeos.Plugin.
func (p *Plugin) Description() string { return "Update Notion pages and comments from Aeos" }

// Version implements aeos.Plugin.
func (p *Plugin) Version() string { return "0.0.1" }

// Enabled implements aeos.Plugin.
func (p *Plugin) Enabled() bool { return p.databaseID != "" }

// Commands implements aeos.Plugin.
func (p *Plugin) Commands() []aeos.Command {
	if !p.Enabled() {
		return nil
	}
	return []aeos.Command{
		{Format: FormatAddPage, Description: "Add a page to the Notion database", Function: p.addPage},
		{Format: FormatAddPageWithIcon, Description: "Add a page with an icon to the Notion database", Function: p.addPage},
		{Format: FormatRenamePage, Description: "Rename a Notion page", Function: p.renamePage},
		{Format: FormatUpdateStatus, Description: "Update the status of a Notion page", Function: p.updateStatus},
		{Format: FormatComment, Description: "Comment on a Notion page", Function: p.comment},
		// Exact match only so a loosely phrased input never archives a page.
		{Format: FormatDeletePage, Description: "Archive a Notion page", RequiresExactMatch: true, Function: p.deletePage},
	}
}

func (p *Plugin) addPage(ctx context.Context, args aeos.Args) aeos.Result {
	if args["title"] == "" {
		return aeos.Fail("Page title not provided")
	}

	id := p.store.CreatePage(ctx, p.databaseID, args["title"], notion.NormalizeIcon(args["icon"]), nil, "")
	if id == "" {
		return aeos.Fail("Failed to create task")
	}
	return aeos.Ok("Task created: " + notion.PageURL(id))
}

func (p *Plugin) renamePage(ctx context.Context, args aeos.Args) aeos.Result {
	if args["id"] == "" {
		return aeos.Fail("id not provided")
	}
	if args["title"] == "" {
		return aeos.Fail("title not provided")
	}
	return p.store.RenamePage(ctx, args["id"], args["title"])
}

func (p *Plugin) updateStatus(ctx context.Context, args aeos.Args) aeos.Result {
	if args["id"] == "" {
		return aeos.Fail("id not provided")
	}
	if args["status"] == "" {
		return aeos.Fail("status not provided")
	}
	return p.store.UpdatePageStatus(ctx, args["id"], args["status"])
}

func (p *Plugin) comment(ctx context.Context, args aeos.Args) aeos.Result {
	if args["id"] == "" {
		return aeos.Fail("id not provided")
	}
	if args["comment"] == "" {
		return aeos.Fail("comment not provided")
	}
	return p.store.CommentOnPage(ctx, args["id"], args["comment"])
}

func (p *Plugin) deletePage(ctx context.Context, args aeos.Args) aeos.Result {
	if args["id"] == "" {
		return aeos.Fail("id not provided")
	}
	return p.store.ArchivePage(ctx, args["id"])
}
